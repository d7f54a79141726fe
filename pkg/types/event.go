package types

import "time"

// EventKind discriminates watch daemon notifications
type EventKind int

const (
	// EventTriggered means a quiet period ended and a sweep is pending
	EventTriggered EventKind = iota
	// EventMoved carries the result of a single file dispatch
	EventMoved
	// EventScanned carries the report of a completed sweep
	EventScanned
	// EventError carries a non-fatal watcher or dispatch error
	EventError
)

// WatchEvent is a daemon notification consumed by UIs and logs
type WatchEvent struct {
	Kind   EventKind
	Move   *MoveResult
	Report *ScanReport
	Err    error
	Time   time.Time
}
