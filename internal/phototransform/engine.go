package phototransform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"cvstudio/internal/prefs"
)

const (
	maxScale   = 2.0
	wheelStep  = 0.05
	faceMargin = 10.0
)

// ErrNotLoaded is returned when a transform operation arrives before Load.
var ErrNotLoaded = errors.New("no photo loaded")

// State is the persisted portrait placement: pixel offsets from the centered
// position and a zoom factor.
type State struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// Engine implements drag and zoom for the portrait inside a fixed viewport.
// All geometry is kept on the server so the exported PDF frames the photo
// exactly like the live page. Methods are safe for concurrent use.
type Engine struct {
	store  prefs.Store
	logger *slog.Logger

	viewportW float64
	viewportH float64

	detector  FaceDetector
	detecting atomic.Bool

	mu       sync.Mutex
	loaded   bool
	naturalW float64
	naturalH float64
	minScale float64
	state    State
	dragging bool
	lastX    float64
	lastY    float64
}

// NewEngine builds an engine for a fixed viewport. detector may be nil, in
// which case CenterOnFace reports no face.
func NewEngine(store prefs.Store, detector FaceDetector, viewportW, viewportH float64, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		detector:  detector,
		viewportW: viewportW,
		viewportH: viewportH,
		logger:    logger,
	}
}

// Load registers the photo's natural dimensions, restores any persisted
// placement and clamps it against the current geometry. The minimum scale is
// the zoom at which the image exactly covers the smaller viewport axis
// ratio, so the photo can always be zoomed out to fully fit.
func (e *Engine) Load(ctx context.Context, naturalW, naturalH float64) (State, error) {
	if naturalW <= 0 || naturalH <= 0 {
		return State{}, errors.New("photo dimensions must be positive")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.naturalW = naturalW
	e.naturalH = naturalH
	e.minScale = math.Min(e.viewportW/naturalW, e.viewportH/naturalH)
	e.loaded = true
	e.dragging = false

	// Without a saved placement the photo starts fully zoomed out.
	e.state = State{Scale: e.minScale}
	if saved, ok := e.restore(ctx); ok {
		e.state = saved
	}
	e.clampLocked()
	// Persist right away so an export sees the same placement the page shows,
	// even before the first drag.
	e.persist(ctx)
	return e.state, nil
}

// State returns the current placement.
func (e *Engine) State() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return State{}, ErrNotLoaded
	}
	return e.state, nil
}

// PointerDown starts a drag at viewport coordinates (x, y).
func (e *Engine) PointerDown(x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return ErrNotLoaded
	}
	e.dragging = true
	e.lastX = x
	e.lastY = y
	return nil
}

// PointerMove pans by the pointer delta since the last event. Moves outside
// an active drag are ignored.
func (e *Engine) PointerMove(ctx context.Context, x, y float64) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return State{}, ErrNotLoaded
	}
	if !e.dragging {
		return e.state, nil
	}

	e.state.OffsetX += x - e.lastX
	e.state.OffsetY += y - e.lastY
	e.lastX = x
	e.lastY = y
	e.clampLocked()
	e.persist(ctx)
	return e.state, nil
}

// PointerUp ends the drag.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragging = false
}

// Wheel zooms by a fixed step around the pointer position: the point under
// the cursor stays put while the rest of the image scales around it.
func (e *Engine) Wheel(ctx context.Context, deltaY, pointerX, pointerY float64) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return State{}, ErrNotLoaded
	}

	step := wheelStep
	if deltaY > 0 {
		step = -wheelStep
	}
	newScale := math.Max(e.minScale, math.Min(e.state.Scale+step, maxScale))

	// Keep the point under the cursor stationary: shift the offset by the
	// cursor's distance from the image center, expressed in unscaled image
	// pixels, times the scale change.
	centerX := e.viewportW/2 + e.state.OffsetX
	centerY := e.viewportH/2 + e.state.OffsetY
	e.state.OffsetX -= (pointerX - centerX) / e.state.Scale * step
	e.state.OffsetY -= (pointerY - centerY) / e.state.Scale * step

	e.state.Scale = newScale
	e.clampLocked()
	e.persist(ctx)
	return e.state, nil
}

// Reset clears the stored placement and returns the photo to its centered,
// fully zoomed out position.
func (e *Engine) Reset(ctx context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return State{}, ErrNotLoaded
	}

	e.state = State{Scale: e.minScale}
	e.clampLocked()
	if err := e.store.Delete(ctx, prefs.ScopePhoto.Keys()...); err != nil {
		return State{}, err
	}
	return e.state, nil
}

// CenterOnFace runs face detection over the photo bytes and, when a face is
// found, zooms and pans so it fills the viewport with a small margin. Only
// one detection runs at a time; a second call while one is in flight is a
// no-op and reports found=false. A failing detector is logged and reported
// as no face, it never blocks manual control.
func (e *Engine) CenterOnFace(ctx context.Context, image io.Reader) (State, bool, error) {
	if e.detector == nil {
		state, err := e.State()
		return state, false, err
	}
	if !e.detecting.CompareAndSwap(false, true) {
		state, err := e.State()
		return state, false, err
	}
	defer e.detecting.Store(false)

	box, found, err := e.detector.DetectFace(ctx, image)
	if err != nil {
		e.logger.Warn("face detection failed", slog.String("error", err.Error()))
		state, stateErr := e.State()
		return state, false, stateErr
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return State{}, false, ErrNotLoaded
	}
	if !found || box.Width <= 0 || box.Height <= 0 {
		return e.state, false, nil
	}

	scale := math.Min(
		(e.viewportW-2*faceMargin)/box.Width,
		(e.viewportH-2*faceMargin)/box.Height,
	)
	scale = math.Max(e.minScale, math.Min(scale, maxScale))

	faceCenterX := box.X + box.Width/2
	faceCenterY := box.Y + box.Height/2
	e.state.Scale = scale
	e.state.OffsetX = -(faceCenterX - e.naturalW/2) * scale
	e.state.OffsetY = -(faceCenterY - e.naturalH/2) * scale

	e.clampLocked()
	e.persist(ctx)
	return e.state, true, nil
}

// clampLocked bounds the scale and keeps the image covering the viewport:
// the offset on each axis may not exceed half the slack between the scaled
// image and the viewport. Callers hold e.mu.
func (e *Engine) clampLocked() {
	if e.state.Scale < e.minScale {
		e.state.Scale = e.minScale
	}
	if e.state.Scale > maxScale {
		e.state.Scale = maxScale
	}

	maxX := math.Max(0, (e.naturalW*e.state.Scale-e.viewportW)/2)
	maxY := math.Max(0, (e.naturalH*e.state.Scale-e.viewportH)/2)
	e.state.OffsetX = math.Min(math.Max(e.state.OffsetX, -maxX), maxX)
	e.state.OffsetY = math.Min(math.Max(e.state.OffsetY, -maxY), maxY)
}

// persist saves the placement. Storage failures are logged, not surfaced:
// losing persistence must not break the interaction.
func (e *Engine) persist(ctx context.Context) {
	values := map[string]string{
		prefs.KeyPhotoOffsetX: formatFloat(e.state.OffsetX),
		prefs.KeyPhotoOffsetY: formatFloat(e.state.OffsetY),
		prefs.KeyPhotoScale:   formatFloat(e.state.Scale),
	}
	for key, value := range values {
		if err := e.store.Set(ctx, key, value); err != nil {
			e.logger.Warn("persist photo transform", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// restore reads a persisted placement. Any missing or malformed value means
// no restore.
func (e *Engine) restore(ctx context.Context) (State, bool) {
	var state State
	fields := []struct {
		key string
		dst *float64
	}{
		{prefs.KeyPhotoOffsetX, &state.OffsetX},
		{prefs.KeyPhotoOffsetY, &state.OffsetY},
		{prefs.KeyPhotoScale, &state.Scale},
	}
	for _, f := range fields {
		raw, ok, err := e.store.Get(ctx, f.key)
		if err != nil {
			e.logger.Warn("restore photo transform", slog.String("key", f.key), slog.String("error", err.Error()))
			return State{}, false
		}
		if !ok {
			return State{}, false
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			e.logger.Warn("restore photo transform", slog.String("key", f.key), slog.String("error", err.Error()))
			return State{}, false
		}
		*f.dst = val
	}
	if state.Scale <= 0 {
		return State{}, false
	}
	return state, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
