package config_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/casewatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TopN, convey.ShouldEqual, 100)
				convey.So(cfg.RefreshInterval, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.ImmediateRefresh, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CASEWATCH_ADDR", ":8080")
			_ = os.Setenv("CASEWATCH_TOP_N", "25")
			_ = os.Setenv("CASEWATCH_PINNED_KEY", "Laos")
			_ = os.Setenv("CASEWATCH_REFRESH_INTERVAL", "45s")
			_ = os.Setenv("CASEWATCH_SECONDARY_FIELDS", "deaths, active,critical")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopN, convey.ShouldEqual, 25)
				convey.So(cfg.PinnedKey, convey.ShouldEqual, "Laos")
				convey.So(cfg.RefreshInterval, convey.ShouldEqual, 45*time.Second)
				convey.So(cfg.SecondaryFields, convey.ShouldResemble, []string{"deaths", "active", "critical"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
top_n: 10
pinned_key: "Thailand"
refresh_interval: 1m
secondary_fields:
  - deaths
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CASEWATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.TopN, convey.ShouldEqual, 10)
				convey.So(cfg.PinnedKey, convey.ShouldEqual, "Thailand")
				convey.So(cfg.RefreshInterval, convey.ShouldEqual, time.Minute)
				convey.So(cfg.SecondaryFields, convey.ShouldResemble, []string{"deaths"})
				convey.So(cfg.MetricField, convey.ShouldEqual, "cases") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\ntop_n: 10\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CASEWATCH_CONFIG", tmpFile)
			_ = os.Setenv("CASEWATCH_TOP_N", "3") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090") // From file
				convey.So(cfg.TopN, convey.ShouldEqual, 3)       // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CASEWATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CASEWATCH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive top_n", func() {
			_ = os.Setenv("CASEWATCH_TOP_N", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a configuration error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero refresh interval", func() {
			_ = os.Setenv("CASEWATCH_REFRESH_INTERVAL", "0s")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a configuration error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CASEWATCH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CASEWATCH_TOP_N", "many")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"CASEWATCH_CONFIG",
		"CASEWATCH_ADDR",
		"CASEWATCH_TOP_N",
		"CASEWATCH_PINNED_KEY",
		"CASEWATCH_REFRESH_INTERVAL",
		"CASEWATCH_SECONDARY_FIELDS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "casewatch-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
