// Package monitoring aggregates per-extraction metrics for batch jobs.
package monitoring

import (
	"sync"
	"time"

	"github.com/hashapp/scout/internal/model"
)

// MetricsSnapshot holds a point-in-time view of a batch run.
type MetricsSnapshot struct {
	Extractions    int     `json:"extractions"`
	Compliant      int     `json:"compliant"`
	ComplianceRate float64 `json:"compliance_rate"`

	OCRTriggered int `json:"ocr_triggered"`
	OCRProduced  int `json:"ocr_produced"` // OCR ran and contributed data

	AvgProcessingMs int64 `json:"avg_processing_ms"`
	MaxProcessingMs int64 `json:"max_processing_ms"`

	LayerUse map[int]int `json:"layer_use"` // layer number -> extractions it contributed to

	CollectedAt time.Time `json:"collected_at"`
}

// Collector accumulates extraction metadata. Safe for concurrent use by
// parallel batch workers.
type Collector struct {
	mu sync.Mutex

	extractions  int
	compliant    int
	ocrTriggered int
	ocrProduced  int
	totalMs      int64
	maxMs        int64
	layerUse     map[int]int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{layerUse: make(map[int]int)}
}

// RecordExtraction folds one extraction's metadata into the counters.
func (c *Collector) RecordExtraction(meta *model.Metadata) {
	if meta == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.extractions++
	if meta.HashCompliant {
		c.compliant++
	}
	if meta.OCRTriggered {
		c.ocrTriggered++
	}
	c.totalMs += meta.ProcessingTimeMs
	if meta.ProcessingTimeMs > c.maxMs {
		c.maxMs = meta.ProcessingTimeMs
	}
	for _, n := range meta.LayersUsed {
		c.layerUse[n]++
		if n == 6 {
			c.ocrProduced++
		}
	}
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() *MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := &MetricsSnapshot{
		Extractions:     c.extractions,
		Compliant:       c.compliant,
		OCRTriggered:    c.ocrTriggered,
		OCRProduced:     c.ocrProduced,
		MaxProcessingMs: c.maxMs,
		LayerUse:        make(map[int]int, len(c.layerUse)),
		CollectedAt:     time.Now().UTC(),
	}
	for n, count := range c.layerUse {
		snap.LayerUse[n] = count
	}
	if c.extractions > 0 {
		snap.ComplianceRate = float64(c.compliant) / float64(c.extractions)
		snap.AvgProcessingMs = c.totalMs / int64(c.extractions)
	}
	return snap
}
