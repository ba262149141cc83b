package config

import (
	"flag"
	"os"
	"time"

	"github.com/gustav-de-Mando/KuratorV1/internal/flagx"
)

var allowedFlags = []string{"-t", "-g", "-a", "-d", "-dsn", "-m", "-l", "-tt", "-vt"}

// parseFlags overlays selected Config fields from command-line flags.
//
//	-t string   discord bot token
//	-g string   guild id for command registration
//	-a string   liveness endpoint address (e.g. ":8080")
//	-d string   storage driver: memory, sqlite or pgx
//	-dsn string storage DSN
//	-m int      expiry sweep interval, minutes
//	-l string   log level
//	-tt int     trade reply timeout, minutes
//	-vt int     treaty reply timeout, minutes
//
// Only these flags are parsed; everything else in os.Args is left to the
// other configuration layers.
func parseFlags(config *Config) {
	if err := applyFlags(config, os.Args[1:]); err != nil {
		panic(err)
	}
}

func applyFlags(config *Config, osArgs []string) error {
	args := flagx.FilterArgs(osArgs, allowedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DiscordToken, "t", config.DiscordToken, "discord bot token")
	fs.StringVar(&config.GuildID, "g", config.GuildID, "guild id")
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "liveness endpoint address")
	fs.StringVar(&config.StorageDriver, "d", config.StorageDriver, "storage driver")
	fs.StringVar(&config.StorageDSN, "dsn", config.StorageDSN, "storage DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	sweep := fs.Int("m", int(config.SweepInterval.Minutes()), "expiry sweep interval (in minutes)")
	trade := fs.Int("tt", int(config.TradeReplyTimeout.Minutes()), "trade reply timeout (in minutes)")
	treaty := fs.Int("vt", int(config.TreatyReplyTimeout.Minutes()), "treaty reply timeout (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only overwrite durations that were given, so sub-minute values from
	// other layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			config.SweepInterval = time.Duration(*sweep) * time.Minute
		case "tt":
			config.TradeReplyTimeout = time.Duration(*trade) * time.Minute
		case "vt":
			config.TreatyReplyTimeout = time.Duration(*treaty) * time.Minute
		}
	})
	return nil
}
