package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks sync pass statistics using lock-free atomic counters.
type Collector struct {
	startTime     time.Time
	remoteEntries atomic.Int64
	localEntries  atomic.Int64
	planned       atomic.Int64
	dirsCreated   atomic.Int64
	linksCreated  atomic.Int64
	skipped       atomic.Int64
	notReady      atomic.Int64
	removed       atomic.Int64
	alreadyAbsent atomic.Int64
	failed        atomic.Int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	RemoteEntries int64
	LocalEntries  int64
	Planned       int64
	DirsCreated   int64
	LinksCreated  int64
	Skipped       int64
	NotReady      int64
	Removed       int64
	AlreadyAbsent int64
	Failed        int64
	Elapsed       time.Duration
}

func (c *Collector) SetRemoteEntries(n int64) { c.remoteEntries.Store(n) }
func (c *Collector) SetLocalEntries(n int64)  { c.localEntries.Store(n) }
func (c *Collector) SetPlanned(n int64)       { c.planned.Store(n) }
func (c *Collector) AddDirsCreated(n int64)   { c.dirsCreated.Add(n) }
func (c *Collector) AddLinksCreated(n int64)  { c.linksCreated.Add(n) }
func (c *Collector) AddSkipped(n int64)       { c.skipped.Add(n) }
func (c *Collector) AddNotReady(n int64)      { c.notReady.Add(n) }
func (c *Collector) AddRemoved(n int64)       { c.removed.Add(n) }
func (c *Collector) AddAlreadyAbsent(n int64) { c.alreadyAbsent.Add(n) }
func (c *Collector) AddFailed(n int64)        { c.failed.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		RemoteEntries: c.remoteEntries.Load(),
		LocalEntries:  c.localEntries.Load(),
		Planned:       c.planned.Load(),
		DirsCreated:   c.dirsCreated.Load(),
		LinksCreated:  c.linksCreated.Load(),
		Skipped:       c.skipped.Load(),
		NotReady:      c.notReady.Load(),
		Removed:       c.removed.Load(),
		AlreadyAbsent: c.alreadyAbsent.Load(),
		Failed:        c.failed.Load(),
		Elapsed:       c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// Applied is the number of actions that changed the local tree.
func (s Snapshot) Applied() int64 {
	return s.DirsCreated + s.LinksCreated + s.Removed
}

// Partial reports whether any action failed or was deferred.
func (s Snapshot) Partial() bool {
	return s.Failed > 0 || s.NotReady > 0
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"remote=%d local=%d planned=%d dirs=%d links=%d removed=%d skipped=%d absent=%d not-ready=%d failed=%d",
		s.RemoteEntries, s.LocalEntries, s.Planned, s.DirsCreated, s.LinksCreated,
		s.Removed, s.Skipped, s.AlreadyAbsent, s.NotReady, s.Failed,
	)
}
