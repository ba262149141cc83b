package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gustav-de-Mando/KuratorV1/internal/flagx"
)

// parseEnv loads the .env file named by -env (or ./.env when present)
// without overriding variables already set, then reads the environment.
func parseEnv(config *Config) {
	if file := flagx.EnvFileFlags(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := applyEnv(config, os.LookupEnv); err != nil {
		panic(err)
	}
}

type lookupFunc func(key string) (string, bool)

func applyEnv(config *Config, lookup lookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&config.DiscordToken, "DISCORD_TOKEN")
	str(&config.GuildID, "KURATOR_GUILD_ID")
	str(&config.AnnouncementChannelID, "KURATOR_ANNOUNCEMENT_CHANNEL")
	str(&config.DevelopmentChannelID, "KURATOR_DEVELOPMENT_CHANNEL")
	str(&config.HTTPAddr, "KURATOR_HTTP_ADDR")
	if port, ok := lookup("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + port
	}
	str(&config.StorageDriver, "KURATOR_STORAGE_DRIVER")
	str(&config.StorageDSN, "KURATOR_STORAGE_DSN", "DATABASE_URL")
	str(&config.SheetID, "TRADE_SHEET_ID")
	str(&config.GoogleServiceAccount, "GOOGLE_SERVICE_ACCOUNT")
	str(&config.GoogleCredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	str(&config.S3AccessKey, "KURATOR_S3_ACCESS_KEY")
	str(&config.S3SecretKey, "KURATOR_S3_SECRET_KEY")
	str(&config.S3Bucket, "KURATOR_S3_BUCKET")
	str(&config.S3Region, "KURATOR_S3_REGION")
	str(&config.S3BaseEndpoint, "KURATOR_S3_ENDPOINT")
	str(&config.SealSecret, "KURATOR_SEAL_SECRET")
	str(&config.PublicBaseURL, "KURATOR_PUBLIC_URL")
	str(&config.LogLevel, "KURATOR_LOG_LEVEL")
	str(&config.LogFormat, "KURATOR_LOG_FORMAT")

	if v, ok := lookup("KURATOR_MOD_ROLES"); ok && v != "" {
		var roles []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
		config.ModRoles = roles
	}

	for key, dst := range map[string]*time.Duration{
		"KURATOR_TRADE_TIMEOUT":  &config.TradeReplyTimeout,
		"KURATOR_TREATY_TIMEOUT": &config.TreatyReplyTimeout,
		"KURATOR_SWEEP_INTERVAL": &config.SweepInterval,
		"KURATOR_S3_LINK_TTL":    &config.S3LinkTTL,
		"KURATOR_SEAL_TTL":       &config.SealTTL,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := lookup("KURATOR_TREATY_DAYS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KURATOR_TREATY_DAYS: %w", err)
		}
		config.DefaultTreatyDays = n
	}
	return nil
}
