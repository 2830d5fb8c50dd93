package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Memory     MemoryConfig     `yaml:"memory" mapstructure:"memory"`
	ICP        ICPConfig        `yaml:"icp" mapstructure:"icp"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Signal     SignalConfig     `yaml:"signal" mapstructure:"signal"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Schedule   ScheduleConfig   `yaml:"schedule" mapstructure:"schedule"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Collectors CollectorsConfig `yaml:"collectors" mapstructure:"collectors"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// OutputConfig configures where pipeline output lands.
type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	StageDir string `yaml:"stage_dir" mapstructure:"stage_dir"`
}

// MemoryConfig holds the store file paths.
type MemoryConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	CompaniesFile   string `yaml:"companies_file" mapstructure:"companies_file"`
	SignalsFile     string `yaml:"signals_file" mapstructure:"signals_file"`
	PreferencesFile string `yaml:"preferences_file" mapstructure:"preferences_file"`
	FeedbackFile    string `yaml:"feedback_file" mapstructure:"feedback_file"`
	TrendWindowDays int    `yaml:"trend_window_days" mapstructure:"trend_window_days"`
}

// CompaniesPath returns the full company-store path.
func (m MemoryConfig) CompaniesPath() string { return filepath.Join(m.Dir, m.CompaniesFile) }

// SignalsPath returns the full signal-history path.
func (m MemoryConfig) SignalsPath() string { return filepath.Join(m.Dir, m.SignalsFile) }

// PreferencesPath returns the full preferences path.
func (m MemoryConfig) PreferencesPath() string { return filepath.Join(m.Dir, m.PreferencesFile) }

// FeedbackPath returns the full feedback-log path.
func (m MemoryConfig) FeedbackPath() string { return filepath.Join(m.Dir, m.FeedbackFile) }

// ICPConfig locates the criteria document.
type ICPConfig struct {
	CriteriaPath string `yaml:"criteria_path" mapstructure:"criteria_path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SignalConfig tunes classification gating.
type SignalConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	ClassifyConcurrency int     `yaml:"classify_concurrency" mapstructure:"classify_concurrency"`
}

// PipelineConfig bounds one run.
type PipelineConfig struct {
	MaxEventsPerRun int    `yaml:"max_events_per_run" mapstructure:"max_events_per_run"`
	Version         string `yaml:"version" mapstructure:"version"`
}

// ScheduleConfig configures watch mode.
type ScheduleConfig struct {
	Cron      string `yaml:"cron" mapstructure:"cron"`
	Immediate bool   `yaml:"immediate" mapstructure:"immediate"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// CollectorsConfig declares the active event sources.
type CollectorsConfig struct {
	DropDirs []DropDirConfig `yaml:"drop_dirs" mapstructure:"drop_dirs"`
	Feeds    []FeedConfig    `yaml:"feeds" mapstructure:"feeds"`
}

// DropDirConfig is a file-replay source.
type DropDirConfig struct {
	Label    string `yaml:"label" mapstructure:"label"`
	Platform string `yaml:"platform" mapstructure:"platform"`
	Dir      string `yaml:"dir" mapstructure:"dir"`
}

// FeedConfig is an HTTP feed source.
type FeedConfig struct {
	Label             string  `yaml:"label" mapstructure:"label"`
	Platform          string  `yaml:"platform" mapstructure:"platform"`
	URL               string  `yaml:"url" mapstructure:"url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SIGNALSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.stage_dir", "output/stage")
	v.SetDefault("memory.dir", "memory")
	v.SetDefault("memory.companies_file", "companies.json")
	v.SetDefault("memory.signals_file", "signals.json")
	v.SetDefault("memory.preferences_file", "preferences.json")
	v.SetDefault("memory.feedback_file", "feedback.json")
	v.SetDefault("memory.trend_window_days", 7)
	v.SetDefault("icp.criteria_path", "icp.json")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("signal.confidence_threshold", 0.6)
	v.SetDefault("signal.classify_concurrency", 5)
	v.SetDefault("pipeline.max_events_per_run", 500)
	v.SetDefault("pipeline.version", "1.0.0")
	v.SetDefault("schedule.cron", "0 0 * * * *")
	v.SetDefault("schedule.immediate", true)
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
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
