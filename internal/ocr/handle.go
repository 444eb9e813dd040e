package ocr

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hashapp/scout/internal/config"
)

// Handle is the shared, reference-counted gateway to the OCR engine.
// Batch jobs run hundreds of sequential extractions against one handle;
// the engine is lazily initialized on first recognition and torn down
// when the last lease is released, so native resources never leak across
// page extractions.
type Handle struct {
	mu     sync.Mutex
	cfg    config.OCRConfig
	engine Engine
	refs   int

	// newEngine is swapped in tests to inject a fake engine.
	newEngine func(config.OCRConfig) (Engine, error)
}

// NewHandle creates a handle. No engine is started until a lease first
// recognizes an image.
func NewHandle(cfg config.OCRConfig) *Handle {
	return &Handle{cfg: cfg, newEngine: NewEngine}
}

// Lease is one extraction's claim on the engine. Release must be called
// exactly once, whether or not Recognize was ever invoked.
type Lease struct {
	h        *Handle
	released bool
}

// Acquire registers a new extraction against the handle.
func (h *Handle) Acquire() *Lease {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs++
	return &Lease{h: h}
}

// Recognize runs OCR on the image, initializing the engine on first use.
func (l *Lease) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	if l.released {
		return nil, eris.New("ocr: recognize on released lease")
	}

	engine, err := l.h.ensureEngine()
	if err != nil {
		return nil, err
	}
	return engine.Recognize(ctx, image)
}

// Release drops the claim. When the last lease goes, the engine is closed
// and the handle returns to its uninitialized state.
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true

	h := l.h
	h.mu.Lock()
	defer h.mu.Unlock()

	h.refs--
	if h.refs > 0 || h.engine == nil {
		return
	}
	if err := h.engine.Close(); err != nil {
		zap.L().Warn("ocr: engine teardown failed", zap.Error(err))
	}
	h.engine = nil
}

func (h *Handle) ensureEngine() (Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine != nil {
		return h.engine, nil
	}
	engine, err := h.newEngine(h.cfg)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: initialize engine")
	}
	h.engine = engine
	return engine, nil
}

// Refs reports the current number of outstanding leases.
func (h *Handle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// Initialized reports whether an engine is currently live.
func (h *Handle) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine != nil
}
