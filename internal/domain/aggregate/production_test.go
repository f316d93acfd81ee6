package aggregate_test

import (
	"testing"
	"time"

	"github.com/okian/linepulse/internal/domain/aggregate"
	"github.com/okian/linepulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func at(s model.Session, hour int) model.Session {
	s.StartTime = s.Date.Add(time.Duration(hour) * time.Hour)
	return s
}

func TestExclusions(t *testing.T) {
	Convey("Given packaging sessions with an abandoned tray", t, func() {
		empty := clean("kim", day(2025, 3, 11), 0)
		empty.ItemCode = model.NotAvailable
		coded := clean("kim", day(2025, 3, 11), 0)
		coded.ItemCode = "8801"
		inspection := clean("lee", day(2025, 3, 11), 0)
		inspection.Process = model.ProcessInspection
		inspection.ItemCode = model.NotAvailable
		worked := clean("lee", day(2025, 3, 11), 300)
		worked.ItemCode = model.NotAvailable

		out := aggregate.ExcludeEmptyPackaging([]model.Session{empty, coded, inspection, worked})

		Convey("Then only packaging sessions without work and item should go", func() {
			So(out, ShouldHaveLength, 3)
			So(out[0].ItemCode, ShouldEqual, "8801")
			So(out[1].Process, ShouldEqual, model.ProcessInspection)
			So(out[2].WorkDurationSeconds, ShouldEqual, 300)
		})
	})

	Convey("Given workers with and without output", t, func() {
		perfs := map[string]model.WorkerPerformance{
			"kim": {WorkerID: "kim", TotalUnits: 60},
			"lee": {WorkerID: "lee", TotalUnits: 0},
		}

		Convey("Then only producing workers should remain", func() {
			out := aggregate.Producing(perfs)
			So(out, ShouldHaveLength, 1)
			So(out, ShouldContainKey, "kim")
			So(perfs, ShouldHaveLength, 2)
		})
	})
}

func TestProductionReductions(t *testing.T) {
	Convey("Given sessions over two days", t, func() {
		d1, d2 := day(2025, 3, 11), day(2025, 3, 12)
		tofu := at(clean("kim", d2, 300), 9)
		tofu.ItemCode, tofu.ItemName = "8801", "Tofu"
		milk := at(clean("lee", d2, 200), 9)
		milk.ItemCode, milk.ItemName = "8802", "Milk"
		late := at(clean("kim", d2, 100), 23)
		late.ItemCode, late.ItemName = "8801", "Tofu"
		idle := at(clean("park", d2, 100), 10)
		idle.UnitsCompleted = 0
		early := at(clean("kim", d1, 400), 7)
		early.LatencySeconds = 20
		sessions := []model.Session{early, tofu, milk, late, idle}

		Convey("When the latest day is selected", func() {
			latest, ok := aggregate.LatestDay(sessions)
			So(ok, ShouldBeTrue)
			So(latest, ShouldEqual, d2)
			So(aggregate.OnDay(sessions, latest), ShouldHaveLength, 4)

			_, ok = aggregate.LatestDay(nil)
			So(ok, ShouldBeFalse)
		})

		Convey("When units are totalled per worker", func() {
			out := aggregate.ByWorker(aggregate.OnDay(sessions, d2))

			Convey("Then the most productive should lead and idle workers vanish", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].WorkerID, ShouldEqual, "kim")
				So(out[0].Units, ShouldEqual, 120)
				So(out[0].AvgWorkTime, ShouldEqual, 200)
				So(out[1].WorkerID, ShouldEqual, "lee")
			})
		})

		Convey("When units are totalled per item", func() {
			out := aggregate.ByItem(aggregate.OnDay(sessions, d2))

			Convey("Then items should carry the display name and tray count", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].Item, ShouldEqual, "Tofu (8801)")
				So(out[0].Units, ShouldEqual, 120)
				So(out[0].SessionCount, ShouldEqual, 2)
				So(out[1].ItemCode, ShouldEqual, "8802")
			})
		})

		Convey("When units are bucketed into shift hours", func() {
			out := aggregate.Hourly(sessions, aggregate.FirstShiftHour, aggregate.LastShiftHour)

			Convey("Then every shift hour should be present and late starts dropped", func() {
				So(out, ShouldHaveLength, 17)
				So(out[0].Hour, ShouldEqual, 6)
				So(out[1].Units, ShouldEqual, 60)
				So(out[3].Units, ShouldEqual, 120)
				So(out[16].Hour, ShouldEqual, 22)
				So(out[16].Units, ShouldEqual, 0)
			})

			Convey("Then the average should divide by active days", func() {
				avg := aggregate.HourlyAverage(sessions, 0, 23)
				So(avg, ShouldHaveLength, 24)
				So(avg[9].Units, ShouldEqual, 60)
				So(avg[23].Units, ShouldEqual, 30)
			})

			Convey("Then an inverted range should be empty", func() {
				So(aggregate.Hourly(sessions, 10, 9), ShouldBeEmpty)
			})
		})

		Convey("When reduced per day", func() {
			out := aggregate.Daily(sessions)

			Convey("Then days should come in date order", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].Date, ShouldEqual, "2025-03-11")
				So(out[0].Units, ShouldEqual, 60)
				So(out[0].AvgLatency, ShouldEqual, 20)
				So(out[1].Units, ShouldEqual, 180)
				So(out[1].SessionCount, ShouldEqual, 4)
				So(out[1].AvgWorkTime, ShouldEqual, 175)
			})
		})

		Convey("When daily averages are taken", func() {
			avg := aggregate.Averages(sessions)

			Convey("Then each figure should be a mean over days", func() {
				So(avg.Days, ShouldEqual, 2)
				So(avg.Units, ShouldAlmostEqual, 120, 1e-9)
				So(avg.Sessions, ShouldAlmostEqual, 2.5, 1e-9)
				So(avg.Workers, ShouldAlmostEqual, 2, 1e-9)
				So(avg.AvgWorkTime, ShouldAlmostEqual, (400+175)/2.0, 1e-9)
				So(avg.Hourly, ShouldHaveLength, 17)
			})

			Convey("Then no sessions should give zero days and a flat profile", func() {
				empty := aggregate.Averages(nil)
				So(empty.Days, ShouldEqual, 0)
				So(empty.Units, ShouldEqual, 0)
				So(empty.Hourly, ShouldHaveLength, 17)
			})
		})

		Convey("When one worker is summarized", func() {
			kim := aggregate.Filter(sessions, model.Filter{WorkerIDs: []string{"kim"}})
			kim[1].HadError = true
			sum := aggregate.Summarize(kim)

			Convey("Then totals and yield should reflect every session", func() {
				So(sum.TotalUnits, ShouldEqual, 180)
				So(sum.TotalSessions, ShouldEqual, 3)
				So(sum.Days, ShouldEqual, 2)
				So(sum.AvgDailyUnits, ShouldEqual, 90)
				So(sum.FirstPassYield, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				So(aggregate.Summarize(nil), ShouldResemble, aggregate.WorkerSummary{})
			})
		})
	})
}
