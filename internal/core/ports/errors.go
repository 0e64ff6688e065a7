package ports

import (
	"errors"
	"fmt"
)

// ErrPlaylistNotFound indicates no playlist matched a lookup.
var ErrPlaylistNotFound = errors.New("playlist not found")

// ErrInsufficientHistory indicates the listener has too little listening
// history to build a profile from. Runs skip the user rather than degrade.
var ErrInsufficientHistory = errors.New("insufficient listening history")

// ErrMissingScope indicates the credentials lack a scope the pipeline
// cannot run without.
var ErrMissingScope = errors.New("required scope not granted")

// InsufficientHistoryError carries the counts behind a skipped user.
type InsufficientHistoryError struct {
	TopTracks int
	Required  int
}

func (e InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient listening history: %d top tracks, need %d", e.TopTracks, e.Required)
}

func (e InsufficientHistoryError) Is(target error) bool {
	return target == ErrInsufficientHistory
}
