package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/silentdrop/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 500)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MediumThreshold, convey.ShouldEqual, 30.0)
			convey.So(cfg.HighThreshold, convey.ShouldEqual, 60.0)
			convey.So(cfg.Weights, convey.ShouldBeEmpty)
			convey.So(cfg.Caps, convey.ShouldBeEmpty)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 500)
				convey.So(cfg.HighThreshold, convey.ShouldEqual, 60.0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SILENTDROP_ADDR", ":8080")
			_ = os.Setenv("SILENTDROP_LOG_LEVEL", "debug")
			_ = os.Setenv("SILENTDROP_LOG_FORMAT", "json")
			_ = os.Setenv("SILENTDROP_MAX_BATCH_SIZE", "50")
			_ = os.Setenv("SILENTDROP_METRICS_ENABLED", "false")
			_ = os.Setenv("SILENTDROP_MEDIUM_THRESHOLD", "25.5")
			_ = os.Setenv("SILENTDROP_HIGH_THRESHOLD", "70")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 50)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MediumThreshold, convey.ShouldEqual, 25.5)
				convey.So(cfg.HighThreshold, convey.ShouldEqual, 70.0)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
max_batch_size: 100
medium_threshold: 35
high_threshold: 65
weights:
  missed_lab_tests: 3
  refill_delay_days: 0.75
caps:
  days_late_follow_up: 45
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SILENTDROP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 100)
				convey.So(cfg.MediumThreshold, convey.ShouldEqual, 35.0)
				convey.So(cfg.HighThreshold, convey.ShouldEqual, 65.0)
				convey.So(cfg.Weights, convey.ShouldResemble, map[string]float64{
					"missed_lab_tests":  3,
					"refill_delay_days": 0.75,
				})
				convey.So(cfg.Caps, convey.ShouldResemble, map[string]float64{
					"days_late_follow_up": 45,
				})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_batch_size: 100
high_threshold: 65
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SILENTDROP_CONFIG", tmpFile)
			_ = os.Setenv("SILENTDROP_ADDR", ":8080")          // This should override the file
			_ = os.Setenv("SILENTDROP_HIGH_THRESHOLD", "55") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")          // Overridden by env
				convey.So(cfg.HighThreshold, convey.ShouldEqual, 55.0)    // Overridden by env
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 100)      // From file
				convey.So(cfg.MediumThreshold, convey.ShouldEqual, 30.0) // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SILENTDROP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SILENTDROP_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SILENTDROP_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive batch size", func() {
			_ = os.Setenv("SILENTDROP_MAX_BATCH_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_batch_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown log format", func() {
			_ = os.Setenv("SILENTDROP_LOG_FORMAT", "xml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SILENTDROP_MAX_BATCH_SIZE", "invalid")
			_ = os.Setenv("SILENTDROP_HIGH_THRESHOLD", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# This is a comment
addr: ":9090"  # Inline comment
# Another comment
high_threshold: 62
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SILENTDROP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.HighThreshold, convey.ShouldEqual, 62.0)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SILENTDROP_CONFIG",
		"SILENTDROP_ADDR",
		"SILENTDROP_LOG_LEVEL",
		"SILENTDROP_LOG_FORMAT",
		"SILENTDROP_MAX_BATCH_SIZE",
		"SILENTDROP_METRICS_ENABLED",
		"SILENTDROP_MEDIUM_THRESHOLD",
		"SILENTDROP_HIGH_THRESHOLD",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "silentdrop-config-*.yaml")
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
