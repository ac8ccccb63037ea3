package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-goalie-metrics/internal/config"
)

var configEnvVars = []string{
	"GOALIE_CONFIG", "GOALIE_DB_PATH", "GOALIE_WORKERS", "GOALIE_LOG_LEVEL",
	"GOALIE_LOOKUP_TIMEOUT", "GOALIE_LOOKUP_RETRIES", "GOALIE_LOOKUP_RPM",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goalie.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.LookupRetries, convey.ShouldEqual, 2)
				convey.So(cfg.LookupTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(filepath.Base(cfg.DBPath), convey.ShouldEqual, "goalies.db")
			})

			convey.Convey("Then the ledger sits beside the database", func() {
				convey.So(cfg.Ledger(), convey.ShouldEqual, filepath.Join(filepath.Dir(cfg.DBPath), "ingested.json"))
			})
		})

		convey.Convey("When loading a YAML file", func() {
			path := writeConfigFile(t, `
db_path: /tmp/goalies-test.db
workers: 3
lookup_timeout: 2s
lookup_backoff: 250ms
ledger_path: /tmp/ledger.json
`)
			cfg, err := config.Load(path)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/goalies-test.db")
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
				convey.So(cfg.LookupTimeout, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.LookupBackoff, convey.ShouldEqual, 250*time.Millisecond)
				convey.So(cfg.Ledger(), convey.ShouldEqual, "/tmp/ledger.json")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When GOALIE_CONFIG names the file and env overrides it", func() {
			path := writeConfigFile(t, "workers: 3\nlog_level: warn\n")
			_ = os.Setenv("GOALIE_CONFIG", path)
			_ = os.Setenv("GOALIE_WORKERS", "7")
			_ = os.Setenv("GOALIE_LOOKUP_RPM", "30")

			cfg, err := config.Load("")

			convey.Convey("Then env takes precedence over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 7)
				convey.So(cfg.LookupRPM, convey.ShouldEqual, 30)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("GOALIE_WORKERS", "0")

			_, err := config.Load("")

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log level is unknown", func() {
			_ = os.Setenv("GOALIE_LOG_LEVEL", "chatty")

			_, err := config.Load("")

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
