// Package ocr is the seam to the black-box text recognition engine.
// The engine itself (binary or remote service) is out of scope: this
// package only turns image bytes into recognized text plus per-token
// confidences, and manages the engine's lifecycle across extractions.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/hashapp/scout/internal/config"
)

// Token is one recognized word with its confidence in [0,1].
type Token struct {
	Text       string
	Confidence float64
}

// Recognition is the output of one OCR pass over a single image.
type Recognition struct {
	Text   string
	Tokens []Token
}

// MeanConfidence averages the per-token confidences, 0 when no tokens.
func (r *Recognition) MeanConfidence() float64 {
	if r == nil || len(r.Tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range r.Tokens {
		sum += t.Confidence
	}
	return sum / float64(len(r.Tokens))
}

// Engine recognizes text in images. Implementations are heavyweight and
// stateful; callers go through a Handle rather than holding an Engine
// directly.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
	Close() error
}

// NewEngine creates an Engine based on config.
func NewEngine(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Provider {
	case "tesseract", "":
		return NewTesseract(cfg.TesseractPath), nil
	case "http":
		if cfg.Endpoint == "" {
			return nil, eris.New("ocr: http provider requires endpoint")
		}
		return NewHTTPEngine(cfg.Endpoint, cfg.Key), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
