package aggregate_test

import (
	"testing"
	"time"

	"github.com/okian/linepulse/internal/domain/aggregate"
	"github.com/okian/linepulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKPIs(t *testing.T) {
	Convey("Given an empty session set", t, func() {
		Convey("Then every KPI should be zero", func() {
			So(aggregate.KPIs(nil), ShouldResemble, model.KPI{})
		})
	})

	Convey("Given a mixed session set over two weeks", t, func() {
		a := clean("W1", day(2025, 3, 1), 300)
		a.ErrorCount = 4
		a.HadError = true
		a.LatencySeconds = 100
		b := clean("W1", day(2025, 3, 7), 500)
		b.LatencySeconds = 5000
		c := clean("W2", day(2025, 3, 14), 400)
		c.ErrorCount = 3
		c.IsTest = true
		c.HadError = true
		c.LatencySeconds = 200

		k := aggregate.KPIs([]model.Session{a, b, c})

		Convey("Then totals and averages should be reduced", func() {
			So(k.TotalSessions, ShouldEqual, 3)
			So(k.TotalUnits, ShouldEqual, 180)
			So(k.AvgUnitsPerSession, ShouldEqual, 60)
			So(k.AvgWorkDuration, ShouldEqual, 400)
			So(k.TotalErrors, ShouldEqual, 7)
		})

		Convey("Then yield should ignore test, partial and restored sessions", func() {
			So(k.AvgYield, ShouldEqual, 0.5)
		})

		Convey("Then latency should average only plausible values", func() {
			So(k.AvgLatency, ShouldEqual, 150)
		})

		Convey("Then weekly errors should divide by the inclusive span in weeks", func() {
			So(k.WeeklyAvgErrors, ShouldAlmostEqual, 7/(14.0/7), 1e-9)
		})

		Convey("Then the defect rate should stay zero without inspection sessions", func() {
			So(k.AvgDefectRate, ShouldEqual, 0)
		})
	})

	Convey("Given a short span with inspection sessions", t, func() {
		s := clean("W1", day(2025, 3, 11), 300)
		s.Process = model.ProcessInspection
		s.UnitsCompleted = 50
		s.DefectCount = 2
		s.ErrorCount = 2
		only := model.Session{Date: day(2025, 3, 11), IsPartial: true, HadError: true}

		k := aggregate.KPIs([]model.Session{s, only})

		Convey("Then weeks should floor at one and the defect rate be reported", func() {
			So(k.WeeklyAvgErrors, ShouldEqual, 2)
			So(k.AvgDefectRate, ShouldAlmostEqual, 0.04, 1e-9)
			So(k.AvgYield, ShouldEqual, 1)
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given sessions across processes, days and workers", t, func() {
		ship := day(2025, 3, 20)
		withShip := clean("kim", day(2025, 3, 11), 300)
		withShip.ShippingDate = &ship
		transfer := clean("lee", day(2025, 3, 11), 300)
		transfer.Process = model.ProcessTransfer
		sessions := []model.Session{
			clean("kim", day(2025, 3, 9), 300),
			withShip,
			clean("lee", day(2025, 3, 12), 300),
			transfer,
		}

		Convey("When filtering by an inclusive date window", func() {
			out := aggregate.Filter(sessions, model.Filter{StartDate: day(2025, 3, 11), EndDate: day(2025, 3, 12)})

			So(out, ShouldHaveLength, 3)
		})

		Convey("When filtering by process and worker", func() {
			out := aggregate.Filter(sessions, model.Filter{
				Process:   model.ProcessPackaging,
				WorkerIDs: []string{"lee"},
			})

			So(out, ShouldHaveLength, 1)
			So(out[0].Date, ShouldEqual, day(2025, 3, 12))
		})

		Convey("When the bounds carry a clock time in another zone", func() {
			start := time.Date(2025, 3, 12, 23, 0, 0, 0, time.UTC)
			out := aggregate.Filter(sessions, model.Filter{StartDate: start, EndDate: start})

			So(out, ShouldHaveLength, 1)
			So(out[0].WorkerID, ShouldEqual, "lee")
		})

		Convey("When filtering by shipping window", func() {
			from, to := day(2025, 3, 18), day(2025, 3, 21)
			out := aggregate.Filter(sessions, model.Filter{ShippingStart: &from, ShippingEnd: &to})

			So(out, ShouldHaveLength, 1)
			So(out[0].ShippingDate, ShouldNotBeNil)
		})

		Convey("When only one shipping bound is set", func() {
			from := day(2025, 3, 25)
			onlyStart := aggregate.Filter(sessions, model.Filter{ShippingStart: &from})
			onlyEnd := aggregate.Filter(sessions, model.Filter{ShippingEnd: &from})

			So(onlyStart, ShouldHaveLength, len(sessions))
			So(onlyEnd, ShouldHaveLength, len(sessions))
		})

		Convey("When nothing matches", func() {
			out := aggregate.Filter(sessions, model.Filter{WorkerIDs: []string{"nobody"}})

			So(out, ShouldNotBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}
