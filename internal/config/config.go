package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all conversion configuration. Unrecognized keys in the
// config file or environment are ignored, not rejected.
type Config struct {
	UseLLM          bool   `mapstructure:"use_llm"`
	OutputFormat    string `mapstructure:"output_format"`
	PaginateOutput  bool   `mapstructure:"paginate_output"`
	PageRange       string `mapstructure:"page_range"`
	BlockRelabel    string `mapstructure:"block_relabel"`
	DebugDataFolder string `mapstructure:"debug_data_folder"`

	LLM        LLMConfig        `mapstructure:"llm"`
	Processors ProcessorToggles `mapstructure:"processors"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Log        LogConfig        `mapstructure:"log"`
}

// LLMConfig holds settings for the LLM service backend.
type LLMConfig struct {
	Service       string `mapstructure:"service"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	APIKey        string `mapstructure:"api_key"`
	MaxRetries    int    `mapstructure:"max_retries"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	RetryWaitSecs int    `mapstructure:"retry_wait_secs"`
}

// ProcessorToggles enables or disables individual LLM-backed processors.
// Toggles are consulted only when no explicit processor list is supplied
// and use_llm is true; non-LLM processors are never filtered by them.
type ProcessorToggles struct {
	EnableLLMTable            bool `mapstructure:"enable_llm_table"`
	EnableLLMTableMerge       bool `mapstructure:"enable_llm_table_merge"`
	EnableLLMForm             bool `mapstructure:"enable_llm_form"`
	EnableLLMComplexRegion    bool `mapstructure:"enable_llm_complex_region"`
	EnableLLMImageDescription bool `mapstructure:"enable_llm_image_description"`
	EnableLLMEquation         bool `mapstructure:"enable_llm_equation"`
	EnableLLMHandwriting      bool `mapstructure:"enable_llm_handwriting"`
	EnableLLMMathBlock        bool `mapstructure:"enable_llm_math_block"`
	EnableLLMSectionHeader    bool `mapstructure:"enable_llm_section_header"`
	EnableLLMPageCorrection   bool `mapstructure:"enable_llm_page_correction"`
}

// DetectorConfig carries hints for the detection collaborators. The values
// are passed through opaquely and not interpreted by the core.
type DetectorConfig struct {
	BatchSize int    `mapstructure:"batch_size"`
	Device    string `mapstructure:"device"`
}

// OCRConfig holds settings for the text recognizer boundary.
type OCRConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Language string `mapstructure:"language"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional config.yaml in the working
// directory plus environment variables with the TREEPRESS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TREEPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	// A missing config file is fine; env and defaults still apply.
	_ = v.ReadInConfig()

	setDefaults(v)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"use_llm":           "TREEPRESS_USE_LLM",
		"output_format":     "TREEPRESS_OUTPUT_FORMAT",
		"paginate_output":   "TREEPRESS_PAGINATE_OUTPUT",
		"page_range":        "TREEPRESS_PAGE_RANGE",
		"block_relabel":     "TREEPRESS_BLOCK_RELABEL",
		"debug_data_folder": "TREEPRESS_DEBUG_DATA_FOLDER",
		"llm.service":         "TREEPRESS_LLM_SERVICE",
		"llm.base_url":        "TREEPRESS_LLM_BASE_URL",
		"llm.model":           "TREEPRESS_LLM_MODEL",
		"llm.api_key":         "TREEPRESS_LLM_API_KEY",
		"llm.max_retries":     "TREEPRESS_LLM_MAX_RETRIES",
		"llm.timeout_secs":    "TREEPRESS_LLM_TIMEOUT_SECS",
		"llm.retry_wait_secs": "TREEPRESS_LLM_RETRY_WAIT_SECS",
		"processors.enable_llm_table":             "TREEPRESS_PROCESSORS_ENABLE_LLM_TABLE",
		"processors.enable_llm_table_merge":       "TREEPRESS_PROCESSORS_ENABLE_LLM_TABLE_MERGE",
		"processors.enable_llm_form":              "TREEPRESS_PROCESSORS_ENABLE_LLM_FORM",
		"processors.enable_llm_complex_region":    "TREEPRESS_PROCESSORS_ENABLE_LLM_COMPLEX_REGION",
		"processors.enable_llm_image_description": "TREEPRESS_PROCESSORS_ENABLE_LLM_IMAGE_DESCRIPTION",
		"processors.enable_llm_equation":          "TREEPRESS_PROCESSORS_ENABLE_LLM_EQUATION",
		"processors.enable_llm_handwriting":       "TREEPRESS_PROCESSORS_ENABLE_LLM_HANDWRITING",
		"processors.enable_llm_math_block":        "TREEPRESS_PROCESSORS_ENABLE_LLM_MATH_BLOCK",
		"processors.enable_llm_section_header":    "TREEPRESS_PROCESSORS_ENABLE_LLM_SECTION_HEADER",
		"processors.enable_llm_page_correction":   "TREEPRESS_PROCESSORS_ENABLE_LLM_PAGE_CORRECTION",
		"detector.batch_size": "TREEPRESS_DETECTOR_BATCH_SIZE",
		"detector.device":     "TREEPRESS_DETECTOR_DEVICE",
		"ocr.enabled":         "TREEPRESS_OCR_ENABLED",
		"ocr.language":        "TREEPRESS_OCR_LANGUAGE",
		"log.level":           "TREEPRESS_LOG_LEVEL",
		"log.format":          "TREEPRESS_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with every default applied, suitable for
// programmatic construction without viper.
func Default() *Config {
	return &Config{
		OutputFormat: "markdown",
		LLM: LLMConfig{
			Service:       "ollama",
			BaseURL:       "http://localhost:11434",
			Model:         "qwen2.5vl:7b",
			MaxRetries:    2,
			TimeoutSecs:   120,
			RetryWaitSecs: 3,
		},
		Processors: ProcessorToggles{
			EnableLLMTable:            true,
			EnableLLMTableMerge:       true,
			EnableLLMForm:             true,
			EnableLLMComplexRegion:    true,
			EnableLLMImageDescription: true,
			EnableLLMEquation:         true,
			EnableLLMHandwriting:      true,
			EnableLLMMathBlock:        true,
			EnableLLMSectionHeader:    true,
			EnableLLMPageCorrection:   true,
		},
		Detector: DetectorConfig{BatchSize: 4, Device: "cpu"},
		OCR:      OCRConfig{Language: "eng"},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("use_llm", false)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("paginate_output", false)
	v.SetDefault("page_range", "")
	v.SetDefault("block_relabel", "")
	v.SetDefault("debug_data_folder", "")

	v.SetDefault("llm.service", "ollama")
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.model", "qwen2.5vl:7b")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("llm.retry_wait_secs", 3)

	v.SetDefault("processors.enable_llm_table", true)
	v.SetDefault("processors.enable_llm_table_merge", true)
	v.SetDefault("processors.enable_llm_form", true)
	v.SetDefault("processors.enable_llm_complex_region", true)
	v.SetDefault("processors.enable_llm_image_description", true)
	v.SetDefault("processors.enable_llm_equation", true)
	v.SetDefault("processors.enable_llm_handwriting", true)
	v.SetDefault("processors.enable_llm_math_block", true)
	v.SetDefault("processors.enable_llm_section_header", true)
	v.SetDefault("processors.enable_llm_page_correction", true)

	v.SetDefault("detector.batch_size", 4)
	v.SetDefault("detector.device", "cpu")

	v.SetDefault("ocr.enabled", false)
	v.SetDefault("ocr.language", "eng")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
