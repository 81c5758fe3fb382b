package server

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/vmunix/trackarr/internal/download"
	"github.com/vmunix/trackarr/internal/tracking"
)

// Lister lists every configured download client.
type Lister interface {
	Poll(ctx context.Context) []download.Listing
}

// Poller feeds client listings into the tracker.
type Poller struct {
	lister  Lister
	tracker *tracking.Service
	group   singleflight.Group
	log     *slog.Logger
}

// NewPoller creates a poller.
func NewPoller(lister Lister, tracker *tracking.Service, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		lister:  lister,
		tracker: tracker,
		log:     logger.With("component", "poller"),
	}
}

// Poll runs one poll cycle. A call made while a cycle is running waits
// for that cycle instead of starting another. It returns the number of
// downloads reported by the clients.
func (p *Poller) Poll(ctx context.Context) int {
	v, _, shared := p.group.Do("poll", func() (any, error) {
		return p.poll(ctx), nil
	})
	if shared {
		p.log.Debug("joined running poll")
	}
	return v.(int)
}

func (p *Poller) poll(ctx context.Context) int {
	listings := p.lister.Poll(ctx)

	var current []string
	reported := 0
	for _, l := range listings {
		if l.Err != nil {
			// Keep what the client reported last time trackable.
			for _, td := range p.tracker.GetTrackedDownloads() {
				if td.DownloadClientID == l.Client.ID && td.IsTrackable {
					current = append(current, td.DownloadID)
				}
			}
			continue
		}
		for _, item := range l.Items {
			td := p.tracker.TrackDownload(l.Client, item)
			if td == nil {
				continue
			}
			reported++
			current = append(current, item.DownloadID)
			if td.DownloadID != item.DownloadID {
				current = append(current, td.DownloadID)
			}
		}
	}

	p.tracker.UpdateTrackable(current)
	p.tracker.PublishRefreshed(ctx)
	p.log.Debug("poll complete", "clients", len(listings), "downloads", reported)
	return reported
}
