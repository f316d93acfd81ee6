package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for configuration. Callers match them with errors.Is.
var (
	// ErrLoadConfig wraps failures reading the dotenv file, the config file or
	// the LINEPULSE_ environment.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidConfig marks a loaded config that fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownPatternProcess marks a file-name marker mapped to a process
	// letter other than A, B or C.
	ErrUnknownPatternProcess = fmt.Errorf("%w: file pattern maps to an unknown process", ErrInvalidConfig)
	// ErrNegativeWeight marks a scoring metric weighted below zero.
	ErrNegativeWeight = fmt.Errorf("%w: negative metric weight", ErrInvalidConfig)
)
