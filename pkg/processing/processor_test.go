package processing

import (
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func square(x0, y0, x1, y1 float64) []geometry.Point {
	return []geometry.Point{
		geometry.Pt(x0, y0), geometry.Pt(x1, y0), geometry.Pt(x1, y1), geometry.Pt(x0, y1),
	}
}

var yellowish = color.NRGBA{200, 180, 100, 255}

func TestRegionMask(t *testing.T) {
	mask := RegionMask(image.Rect(0, 0, 40, 40), square(10, 10, 30, 30))
	if a := mask.AlphaAt(20, 20).A; a != 255 {
		t.Errorf("Expected opaque inside, got %d", a)
	}
	if a := mask.AlphaAt(5, 5).A; a != 0 {
		t.Errorf("Expected transparent outside, got %d", a)
	}

	empty := RegionMask(image.Rect(0, 0, 10, 10), square(0, 0, 5, 5)[:2])
	for _, a := range empty.Pix {
		if a != 0 {
			t.Fatal("Expected empty mask for a two-point region")
		}
	}
}

func TestRecolor(t *testing.T) {
	p := NewProcessor()
	img := solidImage(40, 40, yellowish)
	region := square(10, 10, 30, 30)

	opts := DefaultRecolorOptions()
	opts.Level = 100
	out, err := p.Recolor(img, region, opts)
	if err != nil {
		t.Fatalf("Recolor failed: %v", err)
	}
	nrgba := imaging.Clone(out)

	if got := nrgba.NRGBAAt(5, 5); got != yellowish {
		t.Errorf("Expected pixel outside region unchanged, got %v", got)
	}
	inside := nrgba.NRGBAAt(20, 20)
	if inside == yellowish {
		t.Error("Expected pixel inside region to change")
	}
	// Whitening lowers the blue deficit of a yellow tooth
	if int(inside.R)-int(inside.B) >= int(yellowish.R)-int(yellowish.B) {
		t.Errorf("Expected less yellow inside region, got %v", inside)
	}
	if img.NRGBAAt(20, 20) != yellowish {
		t.Error("Expected input image to be left untouched")
	}
}

func TestRecolorLevels(t *testing.T) {
	p := NewProcessor()
	img := solidImage(40, 40, yellowish)
	region := square(10, 10, 30, 30)

	opts := DefaultRecolorOptions()
	opts.Level = 0
	out, err := p.Recolor(img, region, opts)
	if err != nil {
		t.Fatalf("Recolor failed: %v", err)
	}
	if got := imaging.Clone(out).NRGBAAt(20, 20); got != yellowish {
		t.Errorf("Expected level 0 to leave pixels unchanged, got %v", got)
	}

	opts.Level = 50
	half, _ := p.Recolor(img, region, opts)
	opts.Level = 100
	full, _ := p.Recolor(img, region, opts)
	h := imaging.Clone(half).NRGBAAt(20, 20)
	f := imaging.Clone(full).NRGBAAt(20, 20)
	if !(h.B > yellowish.B && h.B < f.B) {
		t.Errorf("Expected half level between original and full: orig %v half %v full %v", yellowish, h, f)
	}

	if _, err := p.Recolor(img, region[:2], opts); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Expected ErrEmptyRegion, got %v", err)
	}
}

func TestViewImage(t *testing.T) {
	p := NewProcessor()
	img := solidImage(40, 40, yellowish)
	img.SetNRGBA(20, 20, color.NRGBA{0, 0, 0, 255})

	if _, err := p.ViewImage(img, 0); err == nil {
		t.Error("Expected error for zero factor")
	}

	for _, f := range []float64{0.5, 1, 2.7} {
		out, err := p.ViewImage(img, f)
		if err != nil {
			t.Fatalf("ViewImage(%g) failed: %v", f, err)
		}
		if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
			t.Errorf("ViewImage(%g) size = %v, want 40x40", f, b)
		}
	}

	out, _ := p.ViewImage(img, 0.5)
	if a := imaging.Clone(out).NRGBAAt(1, 1).A; a != 0 {
		t.Errorf("Expected transparent border when zoomed out, got alpha %d", a)
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	img := solidImage(16, 8, yellowish)

	for _, format := range []string{"png", "jpg"} {
		path := filepath.Join(dir, "out."+format)
		if err := p.SaveImage(img, path, format, 90, false); err != nil {
			t.Fatalf("SaveImage(%s) failed: %v", format, err)
		}
		loaded, err := p.LoadImageSmart(path)
		if err != nil {
			t.Fatalf("LoadImage(%s) failed: %v", format, err)
		}
		if b := loaded.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
			t.Errorf("unexpected bounds %v for %s", b, format)
		}
	}

	garbage := filepath.Join(dir, "garbage.png")
	os.WriteFile(garbage, []byte("not an image"), 0644)
	if _, err := p.LoadImage(garbage); err == nil {
		t.Error("Expected error for an undecodable file")
	}
}

func TestLoadImageFromURL(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	if err := p.SaveImage(solidImage(4, 4, yellowish), path, "png", 0, false); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/text" {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("hello"))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	img, err := p.LoadImageSmart(srv.URL + "/img.png")
	if err != nil {
		t.Fatalf("LoadImageFromURL failed: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("unexpected width %d", img.Bounds().Dx())
	}

	if _, err := p.LoadImageFromURL(srv.URL + "/text"); err == nil {
		t.Error("Expected error for non-image content type")
	}
	if _, err := p.LoadImageFromURL("ftp://example.com/a.png"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	b64, err := p.PrepareImageForModel(solidImage(200, 100, yellowish), "jpg", 50, 80)
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := p.DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("Expected 50x25 after resize, got %v", b)
	}
}

func TestCreateDebugOverlay(t *testing.T) {
	p := NewProcessor()
	img := solidImage(100, 100, color.NRGBA{0, 0, 0, 255})

	out := p.CreateDebugOverlay(img,
		[]geometry.Point{geometry.Pt(10, 80), geometry.Pt(90, 80)},
		[]geometry.Point{geometry.Pt(30, 30)},
		square(60, 10, 90, 40),
	).(*image.NRGBA)

	if got := out.NRGBAAt(50, 80); got != curveColor {
		t.Errorf("Expected curve colour on the curve, got %v", got)
	}
	if got := out.NRGBAAt(30, 30); got != controlColor {
		t.Errorf("Expected control marker, got %v", got)
	}
	if got := out.NRGBAAt(75, 10); got != templateColor {
		t.Errorf("Expected template outline, got %v", got)
	}
	if got := out.NRGBAAt(5, 5); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("Expected background untouched, got %v", got)
	}
}
