// Package timeparse parses the timestamp notations written by the line collector.
package timeparse

import (
	"errors"
	"strings"
	"time"
)

// ErrUnparsable is returned when no known layout matches.
var ErrUnparsable = errors.New("unparsable time")

var layouts = []string{ //nolint:gochecknoglobals // static layout table
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads s in loc unless s carries its own offset.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparsable
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsable
}
