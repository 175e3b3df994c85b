package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config struct is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Agent       AgentConfig       `mapstructure:"agent"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Assessments AssessmentsConfig `mapstructure:"assessments"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	SessionSecret  string   `mapstructure:"session_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	SecureCookies  bool     `mapstructure:"secure_cookies"`
	LoginPerMinute uint     `mapstructure:"login_per_minute"`
}

// DatabaseConfig holds database connection settings.
// Driver is either "postgres" or "sqlite"; Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Path     string `mapstructure:"path"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AgentConfig selects and configures the remote conversational agent.
type AgentConfig struct {
	Provider       string `mapstructure:"provider"`
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	AgentID        string `mapstructure:"agent_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Topic          string `mapstructure:"default_topic"`
}

// SpeechConfig selects the synthesis provider. Recognition always goes through OpenAI Whisper.
type SpeechConfig struct {
	TTSProvider string `mapstructure:"tts_provider"`
	VoiceID     string `mapstructure:"voice_id"`
	TTSModel    string `mapstructure:"tts_model"`
	STTModel    string `mapstructure:"stt_model"`
	Language    string `mapstructure:"language"`
	ClipLimit   int    `mapstructure:"clip_limit"`
}

// OpenAIConfig is shared by the OpenAI agent, Whisper and TTS clients.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// RedisConfig enables cross-instance fan-out of store change notifications.
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Channel string `mapstructure:"channel"`
}

// SchedulerConfig controls the mood check-in reminder job.
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

// AssessmentsConfig points at the YAML catalog of assessment definitions.
type AssessmentsConfig struct {
	Path string `mapstructure:"path"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "change-me-in-production")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.login_per_minute", 5)

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "goodmind-db")
	v.SetDefault("database.path", "data/goodmind.db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Remote agent defaults
	v.SetDefault("agent.provider", "elevenlabs")
	v.SetDefault("agent.base_url", "https://api.elevenlabs.io")
	v.SetDefault("agent.api_key", "")
	v.SetDefault("agent.agent_id", "")
	v.SetDefault("agent.timeout_seconds", 20)
	v.SetDefault("agent.default_topic", "General wellness check-in")

	// Speech defaults
	v.SetDefault("speech.tts_provider", "elevenlabs")
	v.SetDefault("speech.voice_id", "")
	v.SetDefault("speech.tts_model", "tts-1")
	v.SetDefault("speech.stt_model", "whisper-1")
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.clip_limit", 8)

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.channel", "goodmind-changes")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "* * * * *")

	v.SetDefault("assessments.path", "config/assessments.yaml")
}

// Load reads the configuration without installing a file watcher.
func Load(projectRoot string) (*Config, *viper.Viper, error) {
	// Secrets usually live in a local .env; a missing file is fine.
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("GOODMIND") // e.g., GOODMIND_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, v, nil
}

// Watch hot-reloads Conf whenever the config file changes.
func Watch(v *viper.Viper, log *zap.Logger) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		var reloaded Config
		if err := v.Unmarshal(&reloaded); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		Conf = &reloaded
	})
}
