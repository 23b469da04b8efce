package domain

import "errors"

var (
	// ErrNoActivePoll is returned when an answer or close arrives with no poll running.
	ErrNoActivePoll = errors.New("no active poll")
	// ErrPollMismatch is returned when a submitted poll ID does not match the active poll.
	ErrPollMismatch = errors.New("poll id does not match active poll")
	// ErrPollClosed is returned when a submission targets an already-closed poll.
	ErrPollClosed = errors.New("poll already closed")
	// ErrInvalidPoll indicates a start request failed validation.
	ErrInvalidPoll = errors.New("invalid poll definition")
	// ErrUnknownStudent indicates a kick or remove referenced an unknown connection.
	ErrUnknownStudent = errors.New("student not found")
	// ErrUnknownOption indicates a submitted option is not part of the poll.
	ErrUnknownOption = errors.New("option not part of poll")
	// ErrEmptyMessage indicates a chat message with no text.
	ErrEmptyMessage = errors.New("empty chat message")
	// ErrEmptyName indicates a join without a display name.
	ErrEmptyName = errors.New("empty display name")
)
