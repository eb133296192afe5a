package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menta2k/smile-contour/pkg/curve"
	"github.com/menta2k/smile-contour/pkg/editor"
	"github.com/menta2k/smile-contour/pkg/geometry"
	"github.com/menta2k/smile-contour/pkg/match"
)

// Defaults applied to requests that leave a field out.
type Defaults struct {
	Curve     curve.Options
	HitRadius float64
	Threshold float64
}

type Handler struct {
	store    *Store
	defaults Defaults
	logger   *slog.Logger
}

func NewHandler(store *Store, defaults Defaults, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if defaults.Threshold <= 0 {
		defaults.Threshold = match.DefaultThreshold
	}
	return &Handler{store: store, defaults: defaults, logger: logger}
}

type createSessionRequest struct {
	Region      []geometry.FramePoint `json:"region" binding:"required,min=1"`
	FrameWidth  float64               `json:"frame_width" binding:"required,gt=0"`
	FrameHeight float64               `json:"frame_height" binding:"required,gt=0"`
	Scale       float64               `json:"scale"`
	Recenter    bool                  `json:"recenter"`
	HitRadius   float64               `json:"hit_radius"`
	Alpha       *float64              `json:"alpha"`
	Tension     *float64              `json:"tension"`
	// ScreenWidth maps raw pointer coordinates onto view space when set.
	ScreenWidth float64 `json:"screen_width"`
	OffsetX     float64 `json:"offset_x"`
	MarginTop   float64 `json:"margin_top"`
}

type gestureRequest struct {
	Phase string  `json:"phase" binding:"required,oneof=start move end cancel"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type matchRequest struct {
	Candidate []geometry.Point `json:"candidate"`
	Template  []geometry.Point `json:"template"`
	Threshold float64          `json:"threshold"`
}

type gateRequest struct {
	FrameWidth  float64                 `json:"frame_width" binding:"required,gt=0"`
	FrameHeight float64                 `json:"frame_height" binding:"required,gt=0"`
	Faces       []match.FaceObservation `json:"faces"`
	Template    *match.Template         `json:"template"`
	Mirror      bool                    `json:"mirror"`
	Threshold   float64                 `json:"threshold"`
}

// sessionView is the JSON snapshot of a session.
type sessionView struct {
	ID            string                `json:"id"`
	State         editor.DragState      `json:"state"`
	FrameWidth    float64               `json:"frame_width"`
	FrameHeight   float64               `json:"frame_height"`
	Offset        geometry.Point        `json:"offset"`
	ControlPoints []geometry.ViewPoint  `json:"control_points"`
	Region        []geometry.FramePoint `json:"region"`
	Curve         []geometry.Point      `json:"curve"`
	Path          string                `json:"path"`
	Revision      int                   `json:"revision"`
	CurveError    string                `json:"curve_error,omitempty"`
}

// snapshot must be called from inside Session.Do.
func snapshot(s *Session, ed *editor.Editor) sessionView {
	v := sessionView{
		ID:            s.ID,
		State:         ed.State(),
		FrameWidth:    s.FrameWidth,
		FrameHeight:   s.FrameHeight,
		Offset:        ed.Offset(),
		ControlPoints: ed.ControlPoints(),
		Region:        ed.Region(),
		Revision:      s.revision,
		Curve:         []geometry.Point{},
	}
	c, err := ed.Curve()
	if err != nil {
		v.CurveError = err.Error()
		return v
	}
	v.Curve = c.Points
	v.Path = c.PathData()
	return v
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := editor.Options{
		Transform: geometry.Transform{
			FrameWidth:  req.FrameWidth,
			FrameHeight: req.FrameHeight,
			Factor:      req.Scale,
		},
		Viewport: geometry.Viewport{
			ScreenWidth: req.ScreenWidth,
			FrameWidth:  req.FrameWidth,
			OffsetX:     req.OffsetX,
			MarginTop:   req.MarginTop,
		},
		Curve:     h.defaults.Curve,
		HitRadius: req.HitRadius,
		Recenter:  req.Recenter,
		Logger:    h.logger,
	}
	if opts.Transform.Factor == 0 {
		opts.Transform.Factor = 1
	}
	if opts.HitRadius == 0 {
		opts.HitRadius = h.defaults.HitRadius
	}
	if req.Alpha != nil {
		opts.Curve.Alpha = *req.Alpha
	}
	if req.Tension != nil {
		opts.Curve.Tension = *req.Tension
	}

	ed, err := editor.New(req.Region, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.store.Create(ed, req.FrameWidth, req.FrameHeight)
	if err != nil {
		h.logger.Warn("create session failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	var view sessionView
	s.Do(func(ed *editor.Editor) { view = snapshot(s, ed) })
	c.JSON(http.StatusCreated, gin.H{"data": view})
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	s, err := h.store.Get(c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var view sessionView
	s.Do(func(ed *editor.Editor) { view = snapshot(s, ed) })
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (h *Handler) gesture(c *gin.Context) {
	var req gestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}

	pointer := geometry.Pt(req.X, req.Y)
	var view sessionView
	s.Do(func(ed *editor.Editor) {
		switch req.Phase {
		case "start":
			ed.GestureStart(pointer)
		case "move":
			ed.GestureMove(pointer)
		case "end":
			ed.GestureEnd()
		case "cancel":
			ed.GestureCancel()
		}
		view = snapshot(s, ed)
	})
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (h *Handler) resetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var view sessionView
	s.Do(func(ed *editor.Editor) {
		ed.Reset()
		view = snapshot(s, ed)
	})
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (h *Handler) deleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": id})
}

func (h *Handler) matchRegion(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = h.defaults.Threshold
	}

	ok, err := match.MatchRegion(req.Candidate, req.Template, threshold)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"match": ok, "threshold": threshold}})
}

func (h *Handler) evaluateGate(c *gin.Context) {
	var req gateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Template != nil {
		if err := req.Template.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	g := match.NewGate(req.Template, req.Mirror)
	if req.Threshold > 0 {
		g.Threshold = req.Threshold
	} else {
		g.Threshold = h.defaults.Threshold
	}
	r := g.Evaluate(req.FrameWidth, req.FrameHeight, req.Faces)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"readiness": r, "capture_enabled": r.CaptureEnabled()}})
}
