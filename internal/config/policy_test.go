package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")

	want := DefaultCascade()
	want.OCRTriggerThreshold = 55
	want.MaxFlyerImages = 5
	require.NoError(t, WritePolicy(path, want))

	got, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadPolicyAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	partial := "cascade:\n  ocr_trigger_threshold: 40\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	got, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 40, got.OCRTriggerThreshold)
	assert.Equal(t, 3, got.MaxFlyerImages)
	assert.Equal(t, 25, got.MinConfidence)
	assert.Equal(t, "Other", got.FallbackCategory)
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadPolicyInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cascade: [not a map"), 0o644))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCascade(), cfg.Cascade)
	assert.Equal(t, "tesseract", cfg.OCR.Provider)
	assert.Equal(t, 0.35, cfg.OCR.MinTokenConfidence)
	assert.Equal(t, int64(10<<20), cfg.Fetch.MaxBytes)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestCascadeDurations(t *testing.T) {
	cfg := DefaultCascade()
	assert.Equal(t, int64(2000), cfg.LayerTimeout().Milliseconds())
	assert.Equal(t, int64(15000), cfg.OCRTimeout().Milliseconds())
	assert.Equal(t, int64(45000), cfg.OCRLayerTimeout().Milliseconds())
}
