package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultPort is the HTTP port used when neither the config file nor PORT provide one.
const DefaultPort = 8000

type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Download struct {
		Directory     string `mapstructure:"directory"`      // local artifact directory, also the default bucket root
		WorkDirectory string `mapstructure:"work_directory"` // scratch space for in-progress jobs
		DefaultFormat string `mapstructure:"default_format"`
		Timeout       string `mapstructure:"timeout"` // Go duration string like "10m"
		Retries       int    `mapstructure:"retries"`
		RetryBackoff  string `mapstructure:"retry_backoff"`
		MaxConcurrent int    `mapstructure:"max_concurrent"`
		MaxQueueWait  string `mapstructure:"max_queue_wait"`
		Cookies       string `mapstructure:"cookies"` // Netscape cookie jar contents, usually from YTDLP_COOKIES
	} `mapstructure:"download"`
	Tools struct {
		YtDlpPath   string `mapstructure:"ytdlp_path"`
		FfmpegPath  string `mapstructure:"ffmpeg_path"`
		FfprobePath string `mapstructure:"ffprobe_path"`
	} `mapstructure:"tools"`
	Jobs struct {
		Capacity int `mapstructure:"capacity"` // job records kept for /jobs lookups, independent of the index size
	} `mapstructure:"jobs"`
	Storage struct {
		BucketURL     string `mapstructure:"bucket_url"` // empty means a fileblob bucket rooted at Download.Directory
		Retention     string `mapstructure:"retention"`
		SweepInterval string `mapstructure:"sweep_interval"`
	} `mapstructure:"storage"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`
		TTL      string `mapstructure:"ttl"`
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	GRPC struct {
		Enabled       bool   `mapstructure:"enabled"`
		Port          int    `mapstructure:"port"`
		CheckInterval string `mapstructure:"check_interval"`
	} `mapstructure:"grpc"`
	Sentry struct {
		DSN         string  `mapstructure:"dsn"`
		Environment string  `mapstructure:"environment"`
		SampleRate  float64 `mapstructure:"sample_rate"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Msg("Configuration loaded successfully")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", DefaultPort)

	v.SetDefault("download.directory", "downloads")
	v.SetDefault("download.work_directory", "")
	v.SetDefault("download.default_format", "original")
	v.SetDefault("download.timeout", "10m")
	v.SetDefault("download.retries", 1)
	v.SetDefault("download.retry_backoff", "2s")
	v.SetDefault("download.max_concurrent", 4)
	v.SetDefault("download.max_queue_wait", "30s")
	v.SetDefault("download.cookies", "")

	v.SetDefault("tools.ytdlp_path", "yt-dlp")
	v.SetDefault("tools.ffmpeg_path", "ffmpeg")
	v.SetDefault("tools.ffprobe_path", "ffprobe")

	v.SetDefault("jobs.capacity", 10000)

	v.SetDefault("storage.bucket_url", "")
	v.SetDefault("storage.retention", "24h")
	v.SetDefault("storage.sweep_interval", "15m")

	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.ttl", "")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.port", 9091)
	v.SetDefault("grpc.check_interval", "30s")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.sample_rate", 1.0)
}

func LoadConfig() (*Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Deployment platforms hand out the port and the yt-dlp cookie jar under their own names.
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
	_ = v.BindEnv("download.cookies", "APP_DOWNLOAD_COOKIES", "YTDLP_COOKIES")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	if config.Download.WorkDirectory == "" {
		config.Download.WorkDirectory = os.TempDir()
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, falling back to def when value is
// empty or invalid. Invalid values are logged with the owning config key.
func ParseDuration(key, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}
