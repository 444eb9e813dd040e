package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Tesseract recognizes text via the tesseract CLI in TSV mode, which
// reports a confidence per recognized word.
type Tesseract struct {
	binPath string
}

// NewTesseract creates a Tesseract engine. If binPath is empty,
// "tesseract" is used.
func NewTesseract(binPath string) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &Tesseract{binPath: binPath}
}

// Recognize writes the image to a temp file and runs tesseract over it.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	tmp, err := os.CreateTemp("", "scout-ocr-*.img")
	if err != nil {
		return nil, eris.Wrap(err, "ocr: create temp image")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return nil, eris.Wrap(err, "ocr: write temp image")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "ocr: close temp image")
	}

	cmd := exec.CommandContext(ctx, t.binPath, tmp.Name(), "stdout", "tsv")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "ocr: tesseract failed: %s", strings.TrimSpace(stderr.String()))
	}

	return parseTSV(stdout.String()), nil
}

// Close is a no-op: the CLI engine holds no persistent resources.
func (t *Tesseract) Close() error { return nil }

// parseTSV extracts word-level rows (level 5) from tesseract TSV output.
// Columns: level page block par line word left top width height conf text.
func parseTSV(out string) *Recognition {
	rec := &Recognition{}
	var b strings.Builder
	lastLine := ""

	for _, row := range strings.Split(out, "\n") {
		cols := strings.Split(row, "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}

		lineKey := cols[1] + ":" + cols[2] + ":" + cols[3] + ":" + cols[4]
		if b.Len() > 0 {
			if lineKey != lastLine {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		lastLine = lineKey

		b.WriteString(word)
		rec.Tokens = append(rec.Tokens, Token{Text: word, Confidence: conf / 100})
	}

	rec.Text = b.String()
	return rec
}
