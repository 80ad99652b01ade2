package application

import "errors"

var (
	ErrSessionNotOpen = errors.New("session is not open for attendance")
	ErrAlreadyMarked  = errors.New("attendance already marked for session")
	ErrMarkInFlight   = errors.New("attendance mark already in progress")
	ErrDuplicateTask  = errors.New("poll task already registered")
	ErrNoTasks        = errors.New("no poll tasks registered")
)
