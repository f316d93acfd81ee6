package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/linepulse/internal/domain/aggregate"
	"github.com/okian/linepulse/internal/domain/model"
)

const (
	// averageDays is the look-back window of the production board averages
	// and of a worker's daily breakdown.
	averageDays = 30
	// fallbackDays bounds how far the board looks back for the latest work
	// day when today has no sessions yet.
	fallbackDays = 7
)

// Production is the floor board of one process: the output of today, or of
// the latest work day of the last week when today is still empty.
type Production struct {
	Process  model.Process           `json:"process"`
	Date     string                  `json:"display_date"`
	IsToday  bool                    `json:"is_today"`
	Workers  []aggregate.WorkerUnits `json:"workers"`
	Items    []aggregate.ItemUnits   `json:"items"`
	Hourly   []aggregate.HourlyUnits `json:"hourly"`
	Averages aggregate.DailyAverages `json:"averages"`
}

// WorkerActivity breaks one worker's output down by clock hour over the
// selected window and by day over the month ending with it.
type WorkerActivity struct {
	WorkerID string                  `json:"worker_id"`
	Hourly   []aggregate.HourlyUnits `json:"hourly"`
	Daily    []aggregate.DailyUnits  `json:"daily"`
	Summary  aggregate.WorkerSummary `json:"summary"`
}

// Production builds the board for p.
func (s *Service) Production(ctx context.Context, p model.Process) (Production, error) {
	today := model.Day(s.now().In(s.loc))
	recent, err := s.productive(ctx, model.Filter{
		Process:   p,
		StartDate: today.AddDate(0, 0, -averageDays),
		EndDate:   today,
	})
	if err != nil {
		return Production{}, err
	}

	shown, day := aggregate.OnDay(recent, today), today
	if len(shown) == 0 {
		week := aggregate.Filter(recent, model.Filter{StartDate: today.AddDate(0, 0, -fallbackDays), EndDate: today})
		if latest, ok := aggregate.LatestDay(week); ok {
			day = latest
			shown = aggregate.OnDay(week, latest)
		}
	}

	return Production{
		Process:  p,
		Date:     day.Format(time.DateOnly),
		IsToday:  day.Format(time.DateOnly) == today.Format(time.DateOnly),
		Workers:  aggregate.ByWorker(shown),
		Items:    aggregate.ByItem(shown),
		Hourly:   aggregate.Hourly(shown, aggregate.FirstShiftHour, aggregate.LastShiftHour),
		Averages: aggregate.Averages(recent),
	}, nil
}

// WorkerActivity reduces worker's sessions inside f. Any worker list on f is
// replaced by worker.
func (s *Service) WorkerActivity(ctx context.Context, f model.Filter, worker string) (WorkerActivity, error) {
	worker = strings.TrimSpace(worker)
	if worker == "" {
		return WorkerActivity{}, fmt.Errorf("%w: worker is required", model.ErrInvalidFilter)
	}
	f.WorkerIDs = []string{worker}
	selected, err := s.productive(ctx, f)
	if err != nil {
		return WorkerActivity{}, err
	}

	month := f
	month.StartDate = f.EndDate.AddDate(0, 0, -averageDays)
	daily, err := s.productive(ctx, month)
	if err != nil {
		return WorkerActivity{}, fmt.Errorf("load daily window: %w", err)
	}

	return WorkerActivity{
		WorkerID: worker,
		Hourly:   aggregate.HourlyAverage(selected, 0, 23),
		Daily:    aggregate.Daily(daily),
		Summary:  aggregate.Summarize(selected),
	}, nil
}

// productive is Sessions without abandoned packaging trays.
func (s *Service) productive(ctx context.Context, f model.Filter) ([]model.Session, error) {
	sessions, err := s.Sessions(ctx, f)
	if err != nil {
		return nil, err
	}
	return aggregate.ExcludeEmptyPackaging(sessions), nil
}
