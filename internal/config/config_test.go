package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/linepulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FileCacheTTL, convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.SessionCacheTTL, convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.SessionCacheBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.SyncInterval, convey.ShouldEqual, 5*time.Minute)
			convey.So(cfg.SyncDebounce, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.SyncWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.CompletionEvent, convey.ShouldEqual, "TRAY_COMPLETE")
			convey.So(cfg.PackagingUnits, convey.ShouldEqual, 60)
			convey.So(cfg.FilePatterns, convey.ShouldHaveLength, 3)
			convey.So(cfg.FilePatterns["검사작업이벤트로그"], convey.ShouldEqual, "B")
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
			kind   error
		}{
			{"empty log dir", func(c *config.Config) { c.LogDir = "" }, nil},
			{"zero file cache ttl", func(c *config.Config) { c.FileCacheTTL = 0 }, nil},
			{"unknown backend", func(c *config.Config) { c.SessionCacheBackend = "memcached" }, nil},
			{"redis without addr", func(c *config.Config) { c.SessionCacheBackend = "redis"; c.RedisAddr = "" }, nil},
			{"zero sync workers", func(c *config.Config) { c.SyncWorkers = 0 }, nil},
			{"empty completion", func(c *config.Config) { c.CompletionEvent = "" }, nil},
			{"zero packaging units", func(c *config.Config) { c.PackagingUnits = 0 }, nil},
			{"bad process pattern", func(c *config.Config) { c.FilePatterns["x"] = "D" }, config.ErrUnknownPatternProcess},
			{"negative weight", func(c *config.Config) {
				c.MetricSets = map[string][]config.MetricConfig{"A": {{Name: "speed", Weight: -1}}}
			}, config.ErrNegativeWeight},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				if tc.kind != nil {
					convey.So(errors.Is(err, tc.kind), convey.ShouldBeTrue)
				}
			})
		}
	})
}
