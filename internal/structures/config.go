package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type DiscordConfig struct {
	GuildID        string `yaml:"guildID" validate:"required"`
	TrackedRoleID  string `yaml:"trackedRoleID" validate:"required"`
	AdminRoleID    string `yaml:"adminRoleID" validate:"required"`
	CategoryID     string `yaml:"categoryID" validate:"required"`
	AdminChannelID string `yaml:"adminChannelID" validate:"required"`
	Token          string `yaml:"token"`
}

type RegistryConfig struct {
	FilePath string `yaml:"filePath" validate:"required|unixPath"`
}

type ReportsConfig struct {
	Dir        string `yaml:"dir" validate:"required|unixPath"`
	ArchiveDir string `yaml:"archiveDir" validate:"required|unixPath"`
	WindowDays int    `yaml:"windowDays" validate:"required|min:1"`
	LinkCap    int    `yaml:"linkCap" validate:"required|min:1"`
}

type SweepConfig struct {
	Interval        time.Duration `yaml:"interval" validate:"required|min:1"`
	CompressBackups bool          `yaml:"compressBackups"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Discord   DiscordConfig  `yaml:"discord"`
	Registry  RegistryConfig `yaml:"registry"`
	Reports   ReportsConfig  `yaml:"reports"`
	Sweep     SweepConfig    `yaml:"sweep"`
	OpsServer Server         `yaml:"opsServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
