package services

import "errors"

var (
	// ErrDictionaryNotLoaded is returned while no dictionary is available.
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")

	// ErrNoDictionaryPath is returned by Reload when the service was built
	// from an in-memory dictionary.
	ErrNoDictionaryPath = errors.New("dictionary path not configured")
)
