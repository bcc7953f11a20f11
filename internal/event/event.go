package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ListStarted Type = iota + 1
	ListComplete
	PlanReady
	DirCreated
	LinkCreated
	Skipped
	TargetNotReady
	Removed
	AlreadyAbsent
	ActionFailed
	WouldApply
)

var typeNames = [...]string{
	ListStarted:    "ListStarted",
	ListComplete:   "ListComplete",
	PlanReady:      "PlanReady",
	DirCreated:     "DirCreated",
	LinkCreated:    "LinkCreated",
	Skipped:        "Skipped",
	TargetNotReady: "TargetNotReady",
	Removed:        "Removed",
	AlreadyAbsent:  "AlreadyAbsent",
	ActionFailed:   "ActionFailed",
	WouldApply:     "WouldApply",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from a sync pass.
type Event struct {
	Timestamp time.Time
	Error     error
	Type      Type
	Path      string // relative path; empty for pass-level events
	Target    string // link target, for link events
	Side      string // "remote" or "local", for listing events
	Op        string // planned operation, for WouldApply
	Total     int    // entries listed (ListComplete) or actions planned (PlanReady)
	Deletions int    // PlanReady
	Creations int    // PlanReady
}
