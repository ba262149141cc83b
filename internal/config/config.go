// Package config assembles the bot's settings from defaults, an optional
// JSON file, the environment (optionally seeded from a .env file) and
// command-line flags, in that order.
package config

import (
	"errors"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/archive"
)

// Config holds runtime settings for the Kurator bot.
//
// Fields:
//   - DiscordToken: bot token; the only required value.
//   - GuildID: when set, slash commands are registered for this guild only.
//   - AnnouncementChannelID / DevelopmentChannelID: public channels for
//     ratified deals and performed developments.
//   - TradeReplyTimeout / TreatyReplyTimeout: how long each party has to answer.
//   - SweepInterval / DefaultTreatyDays: treaty expiry settings.
//   - ModRoles: role names that may moderate without the Discord permission.
//   - StorageDriver / StorageDSN: "memory", "sqlite" or "pgx" for active treaties.
//   - SheetID / GoogleServiceAccount / GoogleCredentialsFile: spreadsheet sink.
//   - S3*: document archive; empty bucket disables it.
//   - SealSecret / SealTTL / PublicBaseURL: document seals.
type Config struct {
	DiscordToken          string
	GuildID               string
	AnnouncementChannelID string
	DevelopmentChannelID  string

	HTTPAddr string

	TradeReplyTimeout  time.Duration
	TreatyReplyTimeout time.Duration
	SweepInterval      time.Duration
	DefaultTreatyDays  int
	ModRoles           []string

	StorageDriver string
	StorageDSN    string

	SheetID               string
	GoogleServiceAccount  string
	GoogleCredentialsFile string

	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3LinkTTL      time.Duration

	SealSecret    string
	SealTTL       time.Duration
	PublicBaseURL string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates Config with values suitable for a single guild
// deployment without persistence.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.TradeReplyTimeout = 10 * time.Minute
	c.TreatyReplyTimeout = 5 * time.Minute
	c.SweepInterval = time.Hour
	c.DefaultTreatyDays = 7
	c.ModRoles = []string{"Admin", "Moderator", "Game Master"}
	c.StorageDriver = "memory"
	c.S3Region = "us-east-1"
	c.S3LinkTTL = archive.DefaultLinkTTL
	c.LogLevel = "info"
	c.LogFormat = "json"
}

var ErrMissingToken = errors.New("discord token is required")

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	if c.TradeReplyTimeout <= 0 || c.TreatyReplyTimeout <= 0 {
		return errors.New("reply timeouts must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	if c.DefaultTreatyDays < 1 {
		return errors.New("default treaty duration must be at least one day")
	}
	return nil
}

// SealBaseURL is the public prefix seal tokens are appended to, or "".
func (c *Config) SealBaseURL() string {
	if c.PublicBaseURL == "" {
		return ""
	}
	base := c.PublicBaseURL
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + "seal/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
