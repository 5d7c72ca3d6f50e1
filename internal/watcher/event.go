package watcher

import "time"

// EventType represents the type of file system event
type EventType int

const (
	// EventModified is emitted when the watched file changes (after settling)
	EventModified EventType = iota
	// EventRemoved is emitted when the watched file is gone after settling
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a settled change to the watched file
type Event struct {
	// Type is the kind of event
	Type EventType

	// Path is the watched file path
	Path string

	// Size is the file size in bytes (zero for removals)
	Size int64

	// ModTime is the file's last modification time (zero for removals)
	ModTime time.Time
}
