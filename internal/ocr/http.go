package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/hashapp/scout/internal/resilience"
)

// HTTPEngine recognizes text via a remote OCR service.
type HTTPEngine struct {
	endpoint string
	key      string
	client   *http.Client
}

// NewHTTPEngine creates an engine talking to the given endpoint.
func NewHTTPEngine(endpoint, key string) *HTTPEngine {
	return &HTTPEngine{
		endpoint: endpoint,
		key:      key,
		client:   &http.Client{},
	}
}

type httpOCRRequest struct {
	Image string `json:"image"` // base64
}

type httpOCRResponse struct {
	Text   string `json:"text"`
	Tokens []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"tokens"`
}

// Recognize posts the image and decodes the recognized text. Transient
// HTTP failures are wrapped so the caller's retry policy can act on them.
func (h *HTTPEngine) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	payload, err := json.Marshal(httpOCRRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, eris.Wrap(err, "ocr: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "ocr: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if h.key != "" {
		req.Header.Set("Authorization", "Bearer "+h.key)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: post image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := eris.Errorf("ocr: service returned %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var decoded httpOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, eris.Wrap(err, "ocr: decode response")
	}

	rec := &Recognition{Text: decoded.Text}
	for _, t := range decoded.Tokens {
		rec.Tokens = append(rec.Tokens, Token{Text: t.Text, Confidence: t.Confidence})
	}
	return rec, nil
}

// Close is a no-op for the HTTP engine.
func (h *HTTPEngine) Close() error { return nil }
