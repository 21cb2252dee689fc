// Package config wires runtime configuration through viper: defaults first,
// then an optional .env file, then real environment variables (prefixed
// PLANNER_) which always win.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the shared configuration handle.
var Conf *viper.Viper

func init() {
	Conf = viper.New()

	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("addr", ":8080")
	Conf.SetDefault("databaseUrl", "")
	Conf.SetDefault("logLevel", "INFO")
	Conf.SetDefault("cacheTtl", time.Duration(0)) // 0 = invalidate-on-mutation only
	Conf.SetDefault("shutdownTimeout", 30*time.Second)
	Conf.SetDefault("migrationsPath", "migrations")

	// Load .env if present; absence is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("config: loading .env: %v", err)
		}
	}

	Conf.SetEnvPrefix("PLANNER")
	Conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Conf.AutomaticEnv()
}

// DatabaseURL falls back to the unprefixed DATABASE_URL when the prefixed
// key is unset, matching how deploy environments usually inject it.
func DatabaseURL() string {
	if url := Conf.GetString("databaseUrl"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}
