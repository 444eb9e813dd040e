// Package config loads engine configuration and initializes logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cascade CascadeConfig `yaml:"cascade" mapstructure:"cascade"`
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CascadeConfig is the tunable extraction policy. It is owned by the
// caller and immutable for the duration of one extraction call.
type CascadeConfig struct {
	// OCRTriggerThreshold is the aggregate confidence (0-100) below which
	// the flyer OCR layer runs, provided a usable image candidate exists.
	OCRTriggerThreshold int `yaml:"ocr_trigger_threshold" mapstructure:"ocr_trigger_threshold"`

	// MaxFlyerImages caps how many image candidates the OCR layer
	// processes. It is also the OCR worker pool size.
	MaxFlyerImages int `yaml:"max_flyer_images" mapstructure:"max_flyer_images"`

	// MinConfidence is the floor below which a field proposal is dropped
	// entirely rather than returned as low-quality data.
	MinConfidence int `yaml:"min_confidence" mapstructure:"min_confidence"`

	// LayerTimeoutMs bounds each of layers 1-5.
	LayerTimeoutMs int `yaml:"layer_timeout_ms" mapstructure:"layer_timeout_ms"`

	// OCRTimeoutMs bounds each per-image OCR attempt. The whole OCR layer
	// is additionally bounded by OCRLayerTimeoutMs.
	OCRTimeoutMs      int `yaml:"ocr_timeout_ms" mapstructure:"ocr_timeout_ms"`
	OCRLayerTimeoutMs int `yaml:"ocr_layer_timeout_ms" mapstructure:"ocr_layer_timeout_ms"`

	// EnforceHashRequirements fills missing required fields with
	// placeholder sentinels and scores the record for compliance.
	EnforceHashRequirements bool `yaml:"enforce_hash_requirements" mapstructure:"enforce_hash_requirements"`

	// RequireAddressComma requires the street, city, state shape. Addresses
	// that cannot be reformatted are downgraded, never rejected.
	RequireAddressComma bool `yaml:"require_address_comma" mapstructure:"require_address_comma"`

	// FallbackCategory is emitted when no category signal is confident.
	FallbackCategory string `yaml:"fallback_category" mapstructure:"fallback_category"`
}

// LayerTimeout returns the per-layer bound as a duration.
func (c CascadeConfig) LayerTimeout() time.Duration {
	return time.Duration(c.LayerTimeoutMs) * time.Millisecond
}

// OCRTimeout returns the per-image OCR bound as a duration.
func (c CascadeConfig) OCRTimeout() time.Duration {
	return time.Duration(c.OCRTimeoutMs) * time.Millisecond
}

// OCRLayerTimeout returns the outer bound on the whole OCR layer.
func (c CascadeConfig) OCRLayerTimeout() time.Duration {
	return time.Duration(c.OCRLayerTimeoutMs) * time.Millisecond
}

// OCRConfig selects and configures the text recognition engine.
type OCRConfig struct {
	Provider           string  `yaml:"provider" mapstructure:"provider"` // "tesseract" or "http"
	TesseractPath      string  `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	Endpoint           string  `yaml:"endpoint" mapstructure:"endpoint"`
	Key                string  `yaml:"key" mapstructure:"key"`
	MinTokenConfidence float64 `yaml:"min_token_confidence" mapstructure:"min_token_confidence"`
}

// FetchConfig configures image byte fetching for the OCR layer.
type FetchConfig struct {
	TimeoutMs     int     `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	MaxBytes      int64   `yaml:"max_bytes" mapstructure:"max_bytes"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads configuration from an optional config file and the
// environment (SCOUT_ prefix), applying defaults for every knob.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("scout")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/scout")

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cascade.ocr_trigger_threshold", 70)
	v.SetDefault("cascade.max_flyer_images", 3)
	v.SetDefault("cascade.min_confidence", 25)
	v.SetDefault("cascade.layer_timeout_ms", 2000)
	v.SetDefault("cascade.ocr_timeout_ms", 15000)
	v.SetDefault("cascade.ocr_layer_timeout_ms", 45000)
	v.SetDefault("cascade.enforce_hash_requirements", true)
	v.SetDefault("cascade.require_address_comma", true)
	v.SetDefault("cascade.fallback_category", "Other")
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.min_token_confidence", 0.35)
	v.SetDefault("fetch.timeout_ms", 10000)
	v.SetDefault("fetch.max_bytes", 10<<20)
	v.SetDefault("fetch.rate_per_second", 4)
	v.SetDefault("fetch.user_agent", "scout-extractor/1.0 (+https://github.com/hashapp/scout)")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// DefaultCascade returns the cascade policy with all defaults applied,
// for callers embedding the engine as a library.
func DefaultCascade() CascadeConfig {
	return CascadeConfig{
		OCRTriggerThreshold:     70,
		MaxFlyerImages:          3,
		MinConfidence:           25,
		LayerTimeoutMs:          2000,
		OCRTimeoutMs:            15000,
		OCRLayerTimeoutMs:       45000,
		EnforceHashRequirements: true,
		RequireAddressComma:     true,
		FallbackCategory:        "Other",
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
