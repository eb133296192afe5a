// Package editor lets a user reshape a closed region by dragging its control
// points. The editor keeps the control points in view space, resolves
// gestures against them and refits the curve lazily when it is read.
//
// An Editor is not safe for concurrent use. Gestures and reads are expected
// to be serialised by the host's event loop.
package editor

import (
	"fmt"
	"log/slog"

	"github.com/menta2k/smile-contour/pkg/curve"
	"github.com/menta2k/smile-contour/pkg/geometry"
)

// DefaultHitRadius is the maximum pointer distance, in view units, at which
// a gesture grabs a control point.
const DefaultHitRadius = 50.0

// RegionListener receives the full edited region in frame space.
type RegionListener func(region []geometry.FramePoint)

// Options configures an Editor.
type Options struct {
	// Transform maps the region between frame space and view space.
	Transform geometry.Transform
	// Viewport maps raw pointer positions to view space.
	Viewport geometry.Viewport
	Curve    curve.Options
	// HitRadius defaults to DefaultHitRadius when zero.
	HitRadius float64
	// Recenter moves the region's bounding-box centre onto the frame centre
	// before editing, so zooming keeps the region on screen. Region() undoes
	// the shift.
	Recenter bool
	Logger   *slog.Logger
}

// DefaultOptions returns options for an unzoomed frame of the given size.
func DefaultOptions(frameWidth, frameHeight float64) Options {
	return Options{
		Transform: geometry.Identity(frameWidth, frameHeight),
		Curve:     curve.DefaultOptions(),
		HitRadius: DefaultHitRadius,
	}
}

type listenerEntry struct {
	id int
	fn RegionListener
}

// Editor holds the mutable control points and drag session.
type Editor struct {
	opts    Options
	logger  *slog.Logger
	offset  geometry.Point
	initial []geometry.ViewPoint
	points  []geometry.ViewPoint
	state   DragState

	dirty     bool
	cached    curve.Curve
	cachedErr error
	fits      int

	listeners      []listenerEntry
	nextListenerID int
	stateListeners []StateListener
}

// New creates an editor for a region given in frame space.
func New(region []geometry.FramePoint, opts Options) (*Editor, error) {
	if err := opts.Transform.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Curve.Validate(); err != nil {
		return nil, err
	}
	if opts.HitRadius <= 0 {
		opts.HitRadius = DefaultHitRadius
	}

	local := region
	var offset geometry.Point
	if opts.Recenter {
		box, err := geometry.BoundingBox(geometry.Points(region))
		if err != nil {
			return nil, fmt.Errorf("recenter region: %w", err)
		}
		offset = box.Center().Sub(geometry.Point(opts.Transform.Center()))
		local = geometry.Translate(region, -offset.X, -offset.Y)
	}

	initial := opts.Transform.ToViewAll(local)
	points := make([]geometry.ViewPoint, len(initial))
	copy(points, initial)

	return &Editor{
		opts:    opts,
		logger:  opts.Logger,
		offset:  offset,
		initial: initial,
		points:  points,
		state:   idleState,
		dirty:   true,
	}, nil
}

// State returns the current drag state.
func (e *Editor) State() DragState { return e.state }

// HitRadius returns the effective hit radius.
func (e *Editor) HitRadius() float64 { return e.opts.HitRadius }

// Offset returns the recentring shift applied to the region, in frame units.
func (e *Editor) Offset() geometry.Point { return e.offset }

// ControlPoints returns a copy of the control points in view space.
func (e *Editor) ControlPoints() []geometry.ViewPoint {
	out := make([]geometry.ViewPoint, len(e.points))
	copy(out, e.points)
	return out
}

// Region returns the control points in frame space with any recentring
// shift undone.
func (e *Editor) Region() []geometry.FramePoint {
	frame := e.opts.Transform.ToFrameAll(e.points)
	if e.offset == (geometry.Point{}) {
		return frame
	}
	return geometry.Translate(frame, e.offset.X, e.offset.Y)
}

// Curve returns the closed curve through the current control points in view
// space. The fit is recomputed only after the control points change; the
// returned slices are shared with the cache and must not be modified.
func (e *Editor) Curve() (curve.Curve, error) {
	if e.dirty {
		e.cached, e.cachedErr = e.opts.Curve.Fit(geometry.ViewPoints(e.points))
		e.dirty = false
		e.fits++
		if e.cachedErr != nil && e.logger != nil {
			e.logger.Warn("curve fit failed", "error", e.cachedErr, "points", len(e.points))
		}
	}
	return e.cached, e.cachedErr
}

// PathData returns the fitted curve as closed SVG path data, or "" when the
// curve is empty or degenerate.
func (e *Editor) PathData() string {
	c, err := e.Curve()
	if err != nil {
		return ""
	}
	return c.PathData()
}

// GestureStart resolves the drag target for a new gesture. The nearest
// control point within the hit radius becomes the target; otherwise the
// editor stays Idle and subsequent moves do not mutate any point.
func (e *Editor) GestureStart(pointer geometry.Point) DragState {
	p := geometry.Point(e.opts.Viewport.ToView(pointer))
	minIndex, minDist := -1, 0.0
	for i, cp := range e.points {
		d := geometry.Distance(p, geometry.Point(cp))
		if minIndex < 0 || d < minDist {
			minIndex, minDist = i, d
		}
	}
	next := idleState
	if minIndex >= 0 && minDist < e.opts.HitRadius {
		next = DraggingState(minIndex)
	}
	if e.logger != nil {
		e.logger.Debug("gesture start", "x", p.X, "y", p.Y, "target", next.String(), "distance", minDist)
	}
	e.transition(next)
	return next
}

// GestureMove moves the dragged control point to the pointer, if any, and
// then notifies region listeners with the full region in frame space.
// Listeners are notified even when nothing is being dragged.
func (e *Editor) GestureMove(pointer geometry.Point) {
	if i, ok := e.state.Active(); ok {
		e.points[i] = e.opts.Viewport.ToView(pointer)
		e.dirty = true
	}
	e.notify()
}

// GestureEnd finishes the gesture. Control points keep their last position.
func (e *Editor) GestureEnd() { e.transition(idleState) }

// GestureCancel abandons the gesture. No rollback is performed.
func (e *Editor) GestureCancel() { e.transition(idleState) }

// Reset restores the control points the editor was created with.
func (e *Editor) Reset() {
	copy(e.points, e.initial)
	e.dirty = true
	e.transition(idleState)
	e.notify()
}

// OnRegionChanged subscribes l to region updates. The returned function
// removes the subscription.
func (e *Editor) OnRegionChanged(l RegionListener) (unsubscribe func()) {
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: l})
	return func() {
		for i, le := range e.listeners {
			if le.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// OnStateChanged subscribes l to drag state transitions.
func (e *Editor) OnStateChanged(l StateListener) {
	e.stateListeners = append(e.stateListeners, l)
}

func (e *Editor) transition(next DragState) {
	prev := e.state
	e.state = next
	if prev == next {
		return
	}
	if e.logger != nil {
		e.logger.Debug("drag state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range e.stateListeners {
		l(prev, next)
	}
}

func (e *Editor) notify() {
	if len(e.listeners) == 0 {
		return
	}
	region := e.Region()
	// Listeners may unsubscribe while being notified.
	ls := append([]listenerEntry(nil), e.listeners...)
	for _, le := range ls {
		le.fn(region)
	}
}
