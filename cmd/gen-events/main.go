package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/linepulse/internal/synth"
	"github.com/okian/linepulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultDays           = 3
	defaultWorkers        = 4
	defaultSessionsPerDay = 40
	defaultMalformedRate  = 0.02
	defaultErrorRate      = 0.05
	defaultTimeout        = 5 * time.Minute
)

func main() {
	var (
		outDir    = flag.String("out", "./data/logs", "Folder the event logs are written to")
		start     = flag.String("start", "", "First day to generate, YYYY-MM-DD (default: today)")
		days      = flag.Int("days", defaultDays, "Number of consecutive days")
		workers   = flag.Int("workers", defaultWorkers, "Workers per process")
		sessions  = flag.Int("sessions", defaultSessionsPerDay, "Completed trays per worker per day")
		seed      = flag.Uint64("seed", 0, "Random seed; 0 picks a random one")
		malformed = flag.Float64("malformed", defaultMalformedRate, "Share of junk rows per file")
		errRate   = flag.Float64("errors", defaultErrorRate, "Share of sessions flagged with an error")
		cp949     = flag.Bool("cp949", false, "Write files in CP949 instead of UTF-8")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Get().Named("gen-events")

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	day := time.Now()
	if *start != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, *start, time.Local)
		if err != nil {
			log.Error(ctx, "invalid start date", logger.String("start", *start), logger.Error(err))
			os.Exit(1)
		}
		day = parsed
	}

	cfg := synth.Config{
		OutDir:         *outDir,
		Start:          day,
		Days:           *days,
		Workers:        *workers,
		SessionsPerDay: *sessions,
		Seed:           *seed,
		MalformedRate:  *malformed,
		ErrorRate:      *errRate,
		CP949:          *cp949,
	}
	if _, err := synth.New(cfg, log).Generate(ctx); err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		os.Exit(1)
	}
}
