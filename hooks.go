package releasemap

import (
	"sync"

	"github.com/agentstation/releasemap/pkg/releases"
)

// Hook function types for ledger events.
type (
	// ReleaseAddedHook is called when a newly observed release enters the ledger.
	ReleaseAddedHook func(entry releases.VersionEntry)

	// ReleaseRecoveredHook is called when a release found only in the document
	// is copied back into the ledger.
	ReleaseRecoveredHook func(entry releases.VersionEntry)

	// LinkBackfilledHook is called for every platform URL filled in by backfill.
	LinkBackfilledHook func(version string, platform releases.Platform, url string)
)

// hooks manages event callbacks for ledger changes.
type hooks struct {
	mu                 sync.RWMutex
	onReleaseAdded     []ReleaseAddedHook
	onReleaseRecovered []ReleaseRecoveredHook
	onLinkBackfilled   []LinkBackfilledHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnReleaseAdded registers a callback for new releases.
func (h *hooks) OnReleaseAdded(fn ReleaseAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReleaseAdded = append(h.onReleaseAdded, fn)
}

// OnReleaseRecovered registers a callback for releases recovered from the document.
func (h *hooks) OnReleaseRecovered(fn ReleaseRecoveredHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReleaseRecovered = append(h.onReleaseRecovered, fn)
}

// OnLinkBackfilled registers a callback for backfilled URLs.
func (h *hooks) OnLinkBackfilled(fn LinkBackfilledHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLinkBackfilled = append(h.onLinkBackfilled, fn)
}

func (h *hooks) releaseAdded(entry releases.VersionEntry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onReleaseAdded {
		hook(entry.Clone())
	}
}

func (h *hooks) releaseRecovered(entry releases.VersionEntry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onReleaseRecovered {
		hook(entry.Clone())
	}
}

// linksBackfilled compares before and after and reports every URL that
// appeared on target.
func (h *hooks) linksBackfilled(before, after *releases.Ledger, target releases.Platform) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.onLinkBackfilled) == 0 {
		return
	}
	for _, entry := range after.Versions {
		if !entry.Has(target) {
			continue
		}
		if old, ok := before.Get(entry.Version); ok && old.Has(target) {
			continue
		}
		for _, hook := range h.onLinkBackfilled {
			hook(entry.Version, target, entry.URL(target))
		}
	}
}
