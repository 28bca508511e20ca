package providers

import (
	"replyguy/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		Discord: structures.DiscordConfig{
			GuildID:        "1418568586741551187",
			TrackedRoleID:  "1418569000000000001",
			AdminRoleID:    "1418569000000000002",
			CategoryID:     "1418569000000000003",
			AdminChannelID: "1418569000000000004",
			Token:          "token",
		},
		Registry: structures.RegistryConfig{
			FilePath: "/tmp/replyguy/users.json",
		},
		Reports: structures.ReportsConfig{
			Dir:        "/tmp/replyguy/reports",
			ArchiveDir: "/tmp/replyguy/archive",
			WindowDays: 60,
			LinkCap:    50,
		},
		Sweep: structures.SweepConfig{
			Interval: 6 * time.Hour,
		},
		OpsServer: structures.Server{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/replyguy/logs",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyGuildID(t *testing.T) {
	c := validConfig()
	c.Discord.GuildID = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyRegistryPath(t *testing.T) {
	c := validConfig()
	c.Registry.FilePath = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroWindowDays(t *testing.T) {
	c := validConfig()
	c.Reports.WindowDays = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.OpsServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
