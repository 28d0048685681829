package tui

import "errors"

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDriver is returned by Edit on an editor without a driver.
	ErrNoDriver = errors.New("tui: no prompt driver")
)
