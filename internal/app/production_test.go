package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/linepulse/internal/config"
	"github.com/okian/linepulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const transferToday = `timestamp,event,details,worker
2025-03-12 09:05:00,TRAY_COMPLETE,start_time=2025-03-12 09:00:00|work_time=300|scan_count=40,choi
2025-03-12 10:05:00,TRAY_COMPLETE,start_time=2025-03-12 10:00:00|work_time=300|scan_count=20,choi
2025-03-12 11:05:00,TRAY_COMPLETE,start_time=2025-03-12 11:00:00|work_time=300,jung
`

const transferYesterday = `timestamp,event,details,worker
2025-03-11 09:05:00,TRAY_COMPLETE,start_time=2025-03-11 09:00:00|work_time=300|scan_count=30,choi
`

const packagingEarlier = `timestamp,event,details,worker
2025-03-10 14:05:00,TRAY_COMPLETE,start_time=2025-03-10 14:00:00|work_time=300|item_code=8801|item_name=Tofu,kim
2025-03-10 14:15:00,TRAY_COMPLETE,start_time=2025-03-10 14:10:00|work_time=0,kim
2025-03-10 15:05:00,TRAY_COMPLETE,start_time=2025-03-10 15:00:00|work_time=240|item_code=8802|item_name=Milk,lee
`

func productionFixture(t *testing.T) *config.Config {
	t.Helper()
	logDir := t.TempDir()
	for name, body := range map[string]string{
		"이적작업이벤트로그_20250312.csv":  transferToday,
		"이적작업이벤트로그_20250311.csv":  transferYesterday,
		"포장실작업이벤트로그_20250310.csv": packagingEarlier,
	} {
		if err := os.WriteFile(filepath.Join(logDir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.New()
	cfg.LogDir = logDir
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.DBPath = ""
	cfg.SyncInterval = time.Hour
	return cfg
}

func TestService_Exclusions(t *testing.T) {
	Convey("Given a transfer worker without scans and an abandoned packaging tray", t, func() {
		ctx := context.Background()
		svc := newService(t, productionFixture(t))

		Convey("When the transfer line is analyzed", func() {
			res, err := svc.Analyze(ctx, model.Filter{Process: model.ProcessTransfer, StartDate: day(12), EndDate: day(12)})

			Convey("Then the idle worker should be neither scored nor returned", func() {
				So(err, ShouldBeNil)
				So(res.Sessions, ShouldHaveLength, 3)
				So(res.Workers, ShouldHaveLength, 1)
				So(res.Workers, ShouldContainKey, "choi")
				So(res.Table, ShouldHaveLength, 1)
				So(res.Table[0].WorkerID, ShouldEqual, "choi")
				So(res.KPI.TotalUnits, ShouldEqual, 60)
			})
		})

		Convey("When the packaging line is analyzed", func() {
			res, err := svc.Analyze(ctx, model.Filter{Process: model.ProcessPackaging, StartDate: day(10), EndDate: day(10)})

			Convey("Then the empty tray should be left out", func() {
				So(err, ShouldBeNil)
				So(res.Sessions, ShouldHaveLength, 2)
				So(res.Workers["kim"].SessionCount, ShouldEqual, 1)
				So(res.KPI.TotalSessions, ShouldEqual, 2)
			})

			Convey("Then raw session listing should still hold it", func() {
				raw, err := svc.Sessions(ctx, model.Filter{Process: model.ProcessPackaging, StartDate: day(10), EndDate: day(10)})
				So(err, ShouldBeNil)
				So(raw, ShouldHaveLength, 3)
			})
		})
	})
}

func TestService_Production(t *testing.T) {
	Convey("Given transfer logs for today and yesterday and older packaging logs", t, func() {
		ctx := context.Background()
		svc := newService(t, productionFixture(t))

		Convey("When the transfer board is built", func() {
			board, err := svc.Production(ctx, model.ProcessTransfer)

			Convey("Then today's output should be shown per worker, item and hour", func() {
				So(err, ShouldBeNil)
				So(board.Date, ShouldEqual, "2025-03-12")
				So(board.IsToday, ShouldBeTrue)
				So(board.Workers, ShouldHaveLength, 1)
				So(board.Workers[0].WorkerID, ShouldEqual, "choi")
				So(board.Workers[0].Units, ShouldEqual, 60)
				So(board.Workers[0].SessionCount, ShouldEqual, 2)
				So(board.Items, ShouldHaveLength, 1)
				So(board.Items[0].Units, ShouldEqual, 60)
				So(board.Items[0].SessionCount, ShouldEqual, 3)

				So(board.Hourly, ShouldHaveLength, 17)
				So(board.Hourly[0].Hour, ShouldEqual, 6)
				So(board.Hourly[3].Units, ShouldEqual, 40)
				So(board.Hourly[4].Units, ShouldEqual, 20)
				So(board.Hourly[5].Units, ShouldEqual, 0)
			})

			Convey("Then the averages should span every day of the month", func() {
				So(board.Averages.Days, ShouldEqual, 2)
				So(board.Averages.Units, ShouldAlmostEqual, 45, 1e-9)
				So(board.Averages.Sessions, ShouldAlmostEqual, 2, 1e-9)
				So(board.Averages.Workers, ShouldAlmostEqual, 1.5, 1e-9)
				So(board.Averages.Hourly[3].Units, ShouldAlmostEqual, 35, 1e-9)
			})
		})

		Convey("When the packaging board is built with no sessions today", func() {
			board, err := svc.Production(ctx, model.ProcessPackaging)

			Convey("Then the latest work day should be shown instead", func() {
				So(err, ShouldBeNil)
				So(board.Date, ShouldEqual, "2025-03-10")
				So(board.IsToday, ShouldBeFalse)
				So(board.Workers, ShouldHaveLength, 2)
				So(board.Workers[0].WorkerID, ShouldEqual, "kim")
				So(board.Workers[0].SessionCount, ShouldEqual, 1)
				So(board.Items, ShouldHaveLength, 2)
				So(board.Items[0].Item, ShouldEqual, "Milk (8802)")
			})
		})
	})
}

func TestService_WorkerActivity(t *testing.T) {
	Convey("Given a transfer worker active on two days", t, func() {
		ctx := context.Background()
		svc := newService(t, productionFixture(t))
		f := model.Filter{Process: model.ProcessTransfer, StartDate: day(11), EndDate: day(12)}

		Convey("When the worker's activity is requested", func() {
			act, err := svc.WorkerActivity(ctx, f, " choi ")

			Convey("Then hours should be averaged over active days", func() {
				So(err, ShouldBeNil)
				So(act.WorkerID, ShouldEqual, "choi")
				So(act.Hourly, ShouldHaveLength, 24)
				So(act.Hourly[9].Units, ShouldAlmostEqual, 35, 1e-9)
				So(act.Hourly[10].Units, ShouldAlmostEqual, 10, 1e-9)
			})

			Convey("Then days and the summary should cover the worker only", func() {
				So(act.Daily, ShouldHaveLength, 2)
				So(act.Daily[0].Date, ShouldEqual, "2025-03-11")
				So(act.Daily[0].Units, ShouldEqual, 30)
				So(act.Daily[1].Units, ShouldEqual, 60)
				So(act.Summary.TotalUnits, ShouldEqual, 90)
				So(act.Summary.TotalSessions, ShouldEqual, 3)
				So(act.Summary.Days, ShouldEqual, 2)
				So(act.Summary.AvgDailyUnits, ShouldAlmostEqual, 45, 1e-9)
				So(act.Summary.FirstPassYield, ShouldEqual, 1)
			})
		})

		Convey("When no worker is named", func() {
			_, err := svc.WorkerActivity(ctx, f, "  ")
			So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
		})
	})
}
