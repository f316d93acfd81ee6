package sessioncache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/linepulse/internal/adapters/cache/sessioncache"
	"github.com/okian/linepulse/internal/domain/model"
)

func sessions() []model.Session {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []model.Session{
		{WorkerID: "kim", Process: model.ProcessPackaging, StartTime: start, UnitsCompleted: 60},
		{WorkerID: "lee", Process: model.ProcessPackaging, StartTime: start.Add(time.Hour), UnitsCompleted: 60},
	}
}

func TestKey(t *testing.T) {
	convey.Convey("Given query parameters", t, func() {
		start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

		convey.Convey("Then the worker order should not matter", func() {
			a := sessioncache.Key(model.ProcessInspection, start, end, []string{"lee", "kim"})
			b := sessioncache.Key(model.ProcessInspection, start, end, []string{"kim", "lee", "kim"})
			convey.So(a, convey.ShouldEqual, "B|2025-03-01|2025-03-10|kim,lee")
			convey.So(b, convey.ShouldEqual, a)
		})

		convey.Convey("Then no workers and no process should read as all", func() {
			convey.So(sessioncache.Key(model.ProcessAll, start, end, nil), convey.ShouldEqual, "all|2025-03-01|2025-03-10|all")
		})

		convey.Convey("Then shipping bounds should extend the filter key", func() {
			ship := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
			f := model.Filter{Process: model.ProcessPackaging, StartDate: start, EndDate: end, ShippingStart: &ship}
			convey.So(sessioncache.KeyFor(f), convey.ShouldEqual, "A|2025-03-01|2025-03-10|all|ship:2025-03-05..*")
		})
	})
}

func TestMemory(t *testing.T) {
	convey.Convey("Given a memory session cache with a fake clock", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		cache, err := sessioncache.NewMemory(
			sessioncache.WithMemoryTTL(30*time.Minute),
			sessioncache.WithMemoryClock(func() time.Time { return now }),
		)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When a set is stored", func() {
			convey.So(cache.Set(ctx, "k", sessions()), convey.ShouldBeNil)

			convey.Convey("Then it should be returned before the TTL", func() {
				now = now.Add(29 * time.Minute)
				got, ok := cache.Get(ctx, "k")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldHaveLength, 2)
			})

			convey.Convey("Then it should be evicted on read after the TTL", func() {
				now = now.Add(30 * time.Minute)
				_, ok := cache.Get(ctx, "k")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(cache.Len(), convey.ShouldEqual, 0)
			})

			convey.Convey("Then mutating the result should not alter the cache", func() {
				got, _ := cache.Get(ctx, "k")
				got[0].WorkerID = "changed"
				again, _ := cache.Get(ctx, "k")
				convey.So(again[0].WorkerID, convey.ShouldEqual, "kim")
			})

			convey.Convey("Then Sweep should only drop expired keys", func() {
				now = now.Add(20 * time.Minute)
				convey.So(cache.Set(ctx, "fresh", sessions()), convey.ShouldBeNil)
				now = now.Add(15 * time.Minute)
				convey.So(cache.Sweep(), convey.ShouldEqual, 1)
				convey.So(cache.Len(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When an empty set is stored", func() {
			convey.So(cache.Set(ctx, "empty", nil), convey.ShouldBeNil)
			got, ok := cache.Get(ctx, "empty")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(got, convey.ShouldNotBeNil)
			convey.So(got, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a memory cache bounded to two keys", t, func() {
		ctx := context.Background()
		cache, err := sessioncache.NewMemory(sessioncache.WithMaxEntries(2))
		convey.So(err, convey.ShouldBeNil)

		_ = cache.Set(ctx, "a", sessions())
		_ = cache.Set(ctx, "b", sessions())
		_, _ = cache.Get(ctx, "a")
		_ = cache.Set(ctx, "c", sessions())

		convey.Convey("Then the least recently used key should be evicted", func() {
			_, okA := cache.Get(ctx, "a")
			_, okB := cache.Get(ctx, "b")
			convey.So(okA, convey.ShouldBeTrue)
			convey.So(okB, convey.ShouldBeFalse)
		})
	})
}

func TestMemoryExpiryRace(t *testing.T) {
	convey.Convey("Given readers evicting a stale key while a writer refreshes it", t, func() {
		ctx := context.Background()
		var clock atomic.Int64
		clock.Store(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC).UnixNano())
		cache, err := sessioncache.NewMemory(
			sessioncache.WithMemoryTTL(time.Minute),
			sessioncache.WithMemoryClock(func() time.Time { return time.Unix(0, clock.Load()) }),
		)
		convey.So(err, convey.ShouldBeNil)

		misses := 0
		for range 200 {
			convey.So(cache.Set(ctx, "k", sessions()), convey.ShouldBeNil)
			clock.Add(int64(time.Minute))

			var wg sync.WaitGroup
			for range 4 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = cache.Get(ctx, "k")
				}()
			}
			_ = cache.Set(ctx, "k", sessions())
			if _, ok := cache.Get(ctx, "k"); !ok {
				misses++
			}
			wg.Wait()
		}

		convey.Convey("Then the fresh entry should never be evicted", func() {
			convey.So(misses, convey.ShouldEqual, 0)
		})
	})
}

func TestRedisUnavailable(t *testing.T) {
	convey.Convey("Given a redis cache pointed at a closed port", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			MaxRetries:  -1,
			DialTimeout: 200 * time.Millisecond,
		})
		cache := sessioncache.NewRedis(client, time.Minute, nil)
		defer func() { _ = cache.Close() }()

		convey.Convey("Then Get should degrade to a miss", func() {
			got, ok := cache.Get(ctx, "k")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(got, convey.ShouldBeNil)
		})

		convey.Convey("Then Set should report the failure", func() {
			convey.So(cache.Set(ctx, "k", sessions()), convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given an unreachable address", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		convey.Convey("Then DialRedis should fail", func() {
			_, err := sessioncache.DialRedis(ctx, "127.0.0.1:1", time.Minute, nil)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
