package synth

import (
	"time"

	"github.com/okian/linepulse/internal/domain/model"
)

// Config holds configuration for synthetic log generation.
type Config struct {
	OutDir         string          // folder the CSV logs are written to
	Start          time.Time       // first day generated
	Days           int             // number of consecutive days
	Workers        int             // workers per process
	SessionsPerDay int             // completed trays per worker per day
	Processes      []model.Process // processes to generate; empty means all
	Seed           uint64          // faker seed; equal non-zero seeds give identical output
	MalformedRate  float64         // share of junk rows mixed into each file
	ErrorRate      float64         // share of sessions flagged with an error
	CP949          bool            // encode files as CP949 instead of UTF-8
	Location       *time.Location  // zone of written timestamps
}

// Result summarizes one generation run.
type Result struct {
	Files    []string
	Events   int
	Sessions int
	Workers  map[model.Process][]string
}

func (c Config) withDefaults() Config {
	if c.Days <= 0 {
		c.Days = 1
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.SessionsPerDay <= 0 {
		c.SessionsPerDay = 20
	}
	if len(c.Processes) == 0 {
		c.Processes = model.Processes()
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Start.IsZero() {
		c.Start = time.Now()
	}
	c.Start = model.Day(c.Start.In(c.Location))
	return c
}
