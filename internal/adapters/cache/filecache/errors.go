package filecache

import "errors"

// Sentinel kinds for file cache errors.
var (
	ErrCacheDir   = errors.New("file cache directory unavailable")
	ErrCacheWrite = errors.New("file cache write failed")
	ErrSourceStat = errors.New("cache source stat incomplete")
)
