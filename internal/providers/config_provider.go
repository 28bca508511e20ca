package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"replyguy/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("discord.token", "REPLYGUY_DISCORD_TOKEN")
	viper.BindEnv("logger.level", "REPLYGUY_LOG_LEVEL")
	viper.BindEnv("sweep.interval", "REPLYGUY_SWEEP_INTERVAL")
	viper.BindEnv("registry.filePath", "REPLYGUY_REGISTRY_PATH")
	viper.BindEnv("reports.dir", "REPLYGUY_REPORTS_DIR")
	viper.BindEnv("cache.enabled", "REPLYGUY_CACHE_ENABLED")
	viper.BindEnv("cache.size", "REPLYGUY_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	if conf.Discord.Token == "" {
		conf.Discord.Token = os.Getenv("DISCORD_TOKEN")
	}
	if conf.Discord.Token == "" {
		return nil, fmt.Errorf("discord token not set (REPLYGUY_DISCORD_TOKEN)")
	}

	conf.AppName = "ReplyGuy"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
