package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/flagx"
	"github.com/gustav-de-Mando/KuratorV1/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "10m" style
// strings or integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	DiscordToken          string         `json:"discord_token"`
	GuildID               string         `json:"guild_id"`
	AnnouncementChannelID string         `json:"announcement_channel_id"`
	DevelopmentChannelID  string         `json:"development_channel_id"`
	HTTPAddr              string         `json:"http_addr"`
	TradeReplyTimeout     timex.Duration `json:"trade_reply_timeout"`
	TreatyReplyTimeout    timex.Duration `json:"treaty_reply_timeout"`
	SweepInterval         timex.Duration `json:"sweep_interval"`
	DefaultTreatyDays     int            `json:"default_treaty_days"`
	ModRoles              []string       `json:"mod_roles"`
	StorageDriver         string         `json:"storage_driver"`
	StorageDSN            string         `json:"storage_dsn"`
	SheetID               string         `json:"sheet_id"`
	GoogleCredentialsFile string         `json:"google_credentials_file"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3LinkTTL             timex.Duration `json:"s3_link_ttl"`
	SealSecret            string         `json:"seal_secret"`
	SealTTL               timex.Duration `json:"seal_ttl"`
	PublicBaseURL         string         `json:"public_base_url"`
	LogLevel              string         `json:"log_level"`
	LogFormat             string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any. An unreadable or
// malformed file is fatal.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := applyJson(config, file); err != nil {
		panic(err)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

func applyJson(config *Config, data []byte) error {
	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	setString(&config.DiscordToken, c.DiscordToken)
	setString(&config.GuildID, c.GuildID)
	setString(&config.AnnouncementChannelID, c.AnnouncementChannelID)
	setString(&config.DevelopmentChannelID, c.DevelopmentChannelID)
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.StorageDSN, c.StorageDSN)
	setString(&config.SheetID, c.SheetID)
	setString(&config.GoogleCredentialsFile, c.GoogleCredentialsFile)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SealSecret, c.SealSecret)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	setDuration(&config.TradeReplyTimeout, c.TradeReplyTimeout)
	setDuration(&config.TreatyReplyTimeout, c.TreatyReplyTimeout)
	setDuration(&config.SweepInterval, c.SweepInterval)
	setDuration(&config.S3LinkTTL, c.S3LinkTTL)
	setDuration(&config.SealTTL, c.SealTTL)

	if c.DefaultTreatyDays != 0 {
		config.DefaultTreatyDays = c.DefaultTreatyDays
	}
	if len(c.ModRoles) > 0 {
		config.ModRoles = c.ModRoles
	}
	return nil
}
