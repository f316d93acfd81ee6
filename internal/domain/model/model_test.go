package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	model "github.com/okian/linepulse/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseProcess(t *testing.T) {
	convey.Convey("Given process strings", t, func() {
		convey.Convey("When parsing known codes in any case", func() {
			a, errA := model.ParseProcess("a")
			b, errB := model.ParseProcess(" B ")
			all, errAll := model.ParseProcess("All")
			empty, errEmpty := model.ParseProcess("")

			convey.Convey("Then they should map to processes", func() {
				convey.So(errA, convey.ShouldBeNil)
				convey.So(errB, convey.ShouldBeNil)
				convey.So(errAll, convey.ShouldBeNil)
				convey.So(errEmpty, convey.ShouldBeNil)
				convey.So(a, convey.ShouldEqual, model.ProcessPackaging)
				convey.So(b, convey.ShouldEqual, model.ProcessInspection)
				convey.So(all, convey.ShouldEqual, model.ProcessAll)
				convey.So(empty, convey.ShouldEqual, model.ProcessAll)
			})
		})

		convey.Convey("When parsing an unknown code", func() {
			_, err := model.ParseProcess("D")

			convey.Convey("Then it should fail with ErrUnknownProcess", func() {
				convey.So(errors.Is(err, model.ErrUnknownProcess), convey.ShouldBeTrue)
			})
		})

		convey.Convey("Then only inspection tracks defects", func() {
			convey.So(model.ProcessInspection.TracksDefects(), convey.ShouldBeTrue)
			convey.So(model.ProcessPackaging.TracksDefects(), convey.ShouldBeFalse)
			convey.So(model.ProcessAll.Key(), convey.ShouldEqual, "all")
		})
	})
}

func TestSessionClean(t *testing.T) {
	convey.Convey("Given sessions with various flags", t, func() {
		base := model.Session{UnitsCompleted: 60}

		convey.So(base.Clean(), convey.ShouldBeTrue)

		withErr := base
		withErr.HadError = true
		convey.So(withErr.Clean(), convey.ShouldBeFalse)

		test := base
		test.IsTest = true
		convey.So(test.Clean(), convey.ShouldBeFalse)

		empty := model.Session{}
		convey.So(empty.Clean(), convey.ShouldBeFalse)

		convey.Convey("Then ItemDisplay should combine name and code", func() {
			s := model.Session{ItemName: "Widget", ItemCode: "W-1"}
			convey.So(s.ItemDisplay(), convey.ShouldEqual, "Widget (W-1)")
		})
	})
}

func TestFilterValidate(t *testing.T) {
	convey.Convey("Given filters", t, func() {
		day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

		convey.So(model.Filter{StartDate: day, EndDate: day}.Validate(), convey.ShouldBeNil)

		err := model.Filter{StartDate: day, EndDate: day.AddDate(0, 0, -1)}.Validate()
		convey.So(errors.Is(err, model.ErrInvalidFilter), convey.ShouldBeTrue)

		err = model.Filter{}.Validate()
		convey.So(errors.Is(err, model.ErrInvalidFilter), convey.ShouldBeTrue)

		convey.Convey("Then Workers should sort and dedupe", func() {
			f := model.Filter{WorkerIDs: []string{"kim", "lee", "kim"}}
			convey.So(f.Workers(), convey.ShouldResemble, []string{"kim", "lee"})
			convey.So(f.WorkerIDs, convey.ShouldResemble, []string{"kim", "lee", "kim"})
		})
	})
}

func TestWorkerPerformanceJSON(t *testing.T) {
	convey.Convey("Given a performance without a best record", t, func() {
		p := model.WorkerPerformance{WorkerID: "kim", BestWorkTime: math.Inf(1)}

		raw, err := json.Marshal(p)

		convey.Convey("Then best_work_time should encode as null", func() {
			convey.So(err, convey.ShouldBeNil)
			var out map[string]any
			convey.So(json.Unmarshal(raw, &out), convey.ShouldBeNil)
			convey.So(out["best_work_time"], convey.ShouldBeNil)
			convey.So(out["worker_id"], convey.ShouldEqual, "kim")
		})

		convey.Convey("When a record exists", func() {
			day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
			p.BestWorkTime = 200
			p.BestWorkDate = &day
			raw, err := json.Marshal(p)

			convey.Convey("Then the value should be present", func() {
				convey.So(err, convey.ShouldBeNil)
				var out map[string]any
				convey.So(json.Unmarshal(raw, &out), convey.ShouldBeNil)
				convey.So(out["best_work_time"], convey.ShouldEqual, 200.0)
			})
		})
	})
}
