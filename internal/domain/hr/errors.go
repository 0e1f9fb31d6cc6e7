package hr

import "errors"

// Analytics domain errors
var (
	// ErrNoSnapshot means no dataset has been loaded yet
	ErrNoSnapshot = errors.New("no dataset snapshot loaded")

	// Query boundary errors
	ErrUnknownTable  = errors.New("unknown table name")
	ErrUnknownView   = errors.New("unknown aggregate view")
	ErrUnknownChart  = errors.New("unknown drill chart")
	ErrMissingBucket = errors.New("drill request is missing a bucket label")

	// ErrRefreshInProgress guards against overlapping pipeline runs
	ErrRefreshInProgress = errors.New("a data refresh is already running")
)
