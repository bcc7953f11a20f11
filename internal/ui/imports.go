package ui

import "github.com/bamsammich/linksync/internal/event"

// Event is the progress event presenters consume.
type Event = event.Event

// Re-export event types for convenience.
const (
	ListStarted    = event.ListStarted
	ListComplete   = event.ListComplete
	PlanReady      = event.PlanReady
	DirCreated     = event.DirCreated
	LinkCreated    = event.LinkCreated
	Skipped        = event.Skipped
	TargetNotReady = event.TargetNotReady
	Removed        = event.Removed
	AlreadyAbsent  = event.AlreadyAbsent
	ActionFailed   = event.ActionFailed
	WouldApply     = event.WouldApply
)
