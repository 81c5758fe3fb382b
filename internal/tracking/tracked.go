// Package tracking keeps the volatile set of downloads the daemon knows
// about, matches each to catalog episodes and reconciles split-season
// releases with the catalog's numbering.
package tracking

import (
	"fmt"
	"slices"
	"time"

	"github.com/vmunix/trackarr/internal/download"
	"github.com/vmunix/trackarr/internal/history"
	"github.com/vmunix/trackarr/internal/matching"
)

// State is where a tracked download is in its import lifecycle.
type State int

const (
	StateDownloading State = iota
	StateImported
	StateFailed
	StateIgnored
)

func (s State) String() string {
	switch s {
	case StateImported:
		return "imported"
	case StateFailed:
		return "failed"
	case StateIgnored:
		return "ignored"
	default:
		return "downloading"
	}
}

// IsTerminal reports whether the download's outcome is already known.
func (s State) IsTerminal() bool {
	return s != StateDownloading
}

// stateFromHistory maps the latest download-history outcome to a state.
func stateFromHistory(r *history.DownloadRecord) State {
	if r == nil {
		return StateDownloading
	}
	switch r.EventType {
	case history.DownloadImported:
		return StateImported
	case history.DownloadFailed:
		return StateFailed
	case history.DownloadIgnored:
		return StateIgnored
	default:
		return StateDownloading
	}
}

// TrackedDownload is one download as the tracker sees it.
type TrackedDownload struct {
	DownloadID         string
	DownloadClientID   int64
	DownloadClientName string
	Protocol           download.Protocol

	State       State
	IsTrackable bool

	// RemoteEpisode is nil unless a series and at least one episode matched.
	RemoteEpisode *matching.RemoteEpisode
	ClientItem    *download.ClientItem

	Warnings                     []string
	HasNotifiedManualInteraction bool

	Indexer string
	Added   *time.Time // Grab date from history
}

// Warn records a warning for display. Repeated warnings are kept once.
func (t *TrackedDownload) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !slices.Contains(t.Warnings, msg) {
		t.Warnings = append(t.Warnings, msg)
	}
}

// Clone returns a copy that shares no mutable state with t.
func (t *TrackedDownload) Clone() *TrackedDownload {
	if t == nil {
		return nil
	}
	c := *t
	c.RemoteEpisode = t.RemoteEpisode.Clone()
	c.ClientItem = t.ClientItem.Clone()
	c.Warnings = slices.Clone(t.Warnings)
	if t.Added != nil {
		added := *t.Added
		c.Added = &added
	}
	return &c
}
