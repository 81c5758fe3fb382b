package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/vmunix/trackarr/internal/download"
	"github.com/vmunix/trackarr/internal/events"
	"github.com/vmunix/trackarr/internal/history"
	"github.com/vmunix/trackarr/internal/matching"
	"github.com/vmunix/trackarr/pkg/release"
)

// maxReconcileRestarts caps how often matching starts over after the
// reconciler renamed a download.
const maxReconcileRestarts = 1

const (
	warnParseFailure   = "Unable to parse episodes from title"
	warnMultipleSeries = "Unable to import automatically, found multiple series: %s"
)

// Service tracks downloads reported by download clients. Each download
// id is matched under its own lock, so polls of different downloads
// proceed in parallel.
type Service struct {
	parser          TitleParser
	mapper          EpisodeMapper
	catalog         EpisodeCatalog
	history         HistoryProvider
	downloadHistory DownloadHistoryProvider
	augmenter       Augmenter
	scorer          Scorer
	fs              FileSystem
	bus             Publisher
	metrics         *Metrics
	skipReconcile   bool

	cache *cache
	log   *slog.Logger
}

// New creates a tracker.
func New(deps Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		parser:          deps.Parser,
		mapper:          deps.Mapper,
		catalog:         deps.Catalog,
		history:         deps.History,
		downloadHistory: deps.DownloadHistory,
		augmenter:       deps.Augmenter,
		scorer:          deps.Scorer,
		fs:              deps.FS,
		bus:             deps.Bus,
		metrics:         deps.Metrics,
		skipReconcile:   deps.SkipReconcile,
		cache:           newCache(),
		log:             logger.With("component", "tracking"),
	}
	if s.parser == nil {
		s.parser = release.NewParser()
	}
	if s.augmenter == nil {
		s.augmenter = matching.NewAugmenter()
	}
	if s.fs == nil {
		s.fs = OSFileSystem{}
	}
	return s
}

// Find returns the download tracked under downloadID, or nil.
func (s *Service) Find(downloadID string) *TrackedDownload {
	return s.cache.find(downloadID)
}

// GetTrackedDownloads returns every tracked download, sorted by id.
func (s *Service) GetTrackedDownloads() []*TrackedDownload {
	return s.cache.list()
}

// UpdateTrackable marks every tracked download missing from currentIDs
// as no longer trackable. Nothing is removed. A download the reconciler
// renamed counts as current while the client reports its old id.
func (s *Service) UpdateTrackable(currentIDs []string) {
	current := s.cache.resolveIDs(currentIDs)
	untracked := s.cache.update(func(td *TrackedDownload) bool {
		if current[td.DownloadID] || !td.IsTrackable {
			return false
		}
		td.IsTrackable = false
		return true
	})
	for _, td := range untracked {
		s.log.Debug("download no longer reported by client", "download_id", td.DownloadID)
	}
}

// StopTracking removes the given downloads and publishes one removal
// event for those that were tracked.
func (s *Service) StopTracking(ctx context.Context, downloadIDs ...string) {
	removed := s.cache.remove(downloadIDs...)
	s.metrics.setTracked(s.cache.size())
	if len(removed) == 0 {
		return
	}
	s.log.Debug("stopped tracking", "count", len(removed))
	s.publish(ctx, newRemovedEvent(removed))
}

// PublishRefreshed publishes the full tracked set as one refreshed event.
func (s *Service) PublishRefreshed(ctx context.Context) {
	s.publish(ctx, newRefreshedEvent(s.cache.list()))
}

// TrackDownload records the latest client snapshot of a download and
// matches it to catalog episodes. Downloads whose outcome is already
// known only get their snapshot refreshed. Matching failures never
// escape: they leave the download unmatched with a warning.
//
// An item without a download id cannot be tracked: TrackDownload returns
// nil and the cache is left untouched.
func (s *Service) TrackDownload(client download.ClientInfo, item *download.ClientItem) *TrackedDownload {
	if item == nil || item.DownloadID == "" {
		return nil
	}
	item = item.Clone()
	if client == (download.ClientInfo{}) {
		client = item.Client
	}
	item.Client = client
	s.followRename(item)

	key := item.DownloadID
	e := s.cache.acquire(key)
	defer func() { s.cache.release(key, e) }()

	existing := e.td
	var td *TrackedDownload
	for restarts := 0; ; restarts++ {
		if existing != nil && existing.State.IsTerminal() {
			s.logItemChange(existing, existing.ClientItem, item)
			existing.ClientItem = item
			existing.DownloadID = item.DownloadID
			existing.IsTrackable = true
			td = existing
			break
		}

		next, restart := s.match(client, item, existing, restarts < maxReconcileRestarts)
		if restart {
			s.log.Debug("download renamed, matching again", "download_id", item.DownloadID)
			continue
		}
		var prev *download.ClientItem
		if existing != nil {
			prev = existing.ClientItem
		}
		s.logItemChange(next, prev, item)
		td = next
		break
	}

	if td.DownloadID != key {
		s.cache.rekey(e, key, td.DownloadID)
		key = td.DownloadID
	}
	s.cache.set(e, td)
	s.metrics.setTracked(s.cache.size())
	return td.Clone()
}

// followRename points an item reported under a download id the
// reconciler renamed away from at the renamed download. Clients keep
// reporting the name they know, so the renamed title and path are kept.
func (s *Service) followRename(item *download.ClientItem) {
	id := s.cache.renamedTo(item.DownloadID)
	if id == "" {
		return
	}
	current := s.cache.find(id)
	if current == nil || current.ClientItem == nil {
		return
	}
	s.log.Debug("following renamed download", "download_id", item.DownloadID, "renamed_to", id)
	item.DownloadID = id
	item.Title = current.ClientItem.Title
	item.OutputPath = current.ClientItem.OutputPath
}

// match builds a fresh tracked download for item. It reports restart
// when the reconciler renamed the download and matching must start over
// from the new name.
func (s *Service) match(client download.ClientInfo, item *download.ClientItem, existing *TrackedDownload, allowRestart bool) (td *TrackedDownload, restart bool) {
	td = &TrackedDownload{
		DownloadID:         item.DownloadID,
		DownloadClientID:   client.ID,
		DownloadClientName: client.Name,
		Protocol:           client.Protocol,
		ClientItem:         item,
		State:              StateDownloading,
		IsTrackable:        true,
	}
	if existing != nil {
		td.HasNotifiedManualInteraction = existing.HasNotifiedManualInteraction
	}

	outcome := "unmatched"
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("matching panicked", "download_id", item.DownloadID, "title", item.Title, "panic", r)
			td.RemoteEpisode = nil
			td.Warn(warnParseFailure)
			restart = false
			outcome = "error"
		}
		td.DownloadID = item.DownloadID
		if !restart {
			s.metrics.outcome(outcome)
		}
	}()

	restart, ambiguous, err := s.resolve(td, allowRestart)
	switch {
	case restart:
		return td, true
	case err != nil:
		s.log.Debug("failed to find episode", "download_id", item.DownloadID, "title", item.Title, "error", err)
		td.RemoteEpisode = nil
		td.Warn(warnParseFailure)
		outcome = "error"
		return td, false
	case ambiguous:
		outcome = "ambiguous"
	}

	if td.RemoteEpisode == nil {
		s.log.Debug("no episode found for download", "download_id", item.DownloadID, "title", item.Title)
		return td, false
	}

	s.augmenter.Augment(td.RemoteEpisode)
	if s.scorer != nil {
		formats := s.scorer.Score(td.RemoteEpisode, item.TotalSize)
		td.RemoteEpisode.CustomFormats = formats
		td.RemoteEpisode.CustomFormatScore = matching.TotalScore(formats)
	}
	outcome = "matched"
	return td, false
}

// resolve fills td from the title, the reconciler and history.
func (s *Service) resolve(td *TrackedDownload, allowRestart bool) (restart, ambiguous bool, err error) {
	item := td.ClientItem

	parsed := s.parseItem(item)
	if parsed != nil {
		outcome, err := s.mapper.Map(parsed, 0, nil)
		if err != nil {
			return false, false, fmt.Errorf("map title: %w", err)
		}
		if outcome.Kind == matching.Ambiguous {
			s.warnAmbiguous(td, outcome)
			ambiguous = true
		}
		td.RemoteEpisode = outcome.RemoteEpisode()
	}

	if td.RemoteEpisode != nil && !s.skipReconcile {
		res := s.reconcile(td.RemoteEpisode, item.Title, item)
		if res.renamed && allowRestart {
			return true, false, nil
		}
		if res.applied {
			outcome, err := s.mapper.Map(td.RemoteEpisode.ParsedInfo, td.RemoteEpisode.Series.ID, res.episodeIDs)
			if err != nil {
				return false, false, fmt.Errorf("map offset episodes: %w", err)
			}
			td.RemoteEpisode = outcome.RemoteEpisode()
		}
	}

	latest, err := s.downloadHistory.LatestByDownloadID(item.DownloadID)
	if err != nil && !errors.Is(err, history.ErrNotFound) {
		return false, ambiguous, fmt.Errorf("latest download history: %w", err)
	}
	td.State = stateFromHistory(latest)

	records, err := s.history.FindByDownloadID(item.DownloadID)
	if err != nil {
		return false, ambiguous, fmt.Errorf("find history: %w", err)
	}
	if len(records) == 0 || ambiguous {
		return false, ambiguous, nil
	}

	grabbed := history.Grabbed(records)
	if grabbed != nil {
		td.Indexer = grabbed.Data[history.DataIndexer]
		added := grabbed.Date
		td.Added = &added
	}

	if td.RemoteEpisode == nil {
		// Clients often rename downloads; the title recorded at grab time
		// keeps the tokens the live title lost.
		first := records[0]
		episodeIDs := grabbedEpisodeIDs(records)
		info := s.parser.ParseTitle(first.SourceTitle)
		if info == nil {
			info = s.mapper.ParseSpecialEpisodeTitle(parsed, first.SourceTitle, first.SeriesID, episodeIDs)
		}
		if info != nil {
			outcome, err := s.mapper.Map(info, first.SeriesID, episodeIDs)
			if err != nil {
				return false, false, fmt.Errorf("map history title: %w", err)
			}
			if outcome.Kind == matching.Ambiguous {
				s.warnAmbiguous(td, outcome)
				return false, true, nil
			}
			td.RemoteEpisode = outcome.RemoteEpisode()
		}
	}

	if remote := td.RemoteEpisode; remote != nil {
		if remote.Release == nil {
			remote.Release = &matching.ReleaseInfo{}
		}
		remote.Release.Indexer = td.Indexer
		remote.Release.Size = item.TotalSize
		if remote.ParsedInfo != nil {
			remote.Release.Title = remote.ParsedInfo.ReleaseTitle
		}
		if grabbed != nil {
			if grabbed.SourceTitle != "" {
				remote.Release.Title = grabbed.SourceTitle
			}
			remote.Release.Flags = matching.ParseIndexerFlags(grabbed.Data[history.DataIndexerFlags])
			remote.Release.GrabbedAt = grabbed.Date
		}
		if latest != nil {
			remote.Release.IndexerID = latest.IndexerID
		}
	}
	return false, false, nil
}

// parseItem parses the client title. A download that is a single video
// file is resolved with the file, folder and client parses together.
func (s *Service) parseItem(item *download.ClientItem) *release.ParsedEpisodeInfo {
	clientInfo := s.parser.ParseTitle(item.Title)
	if item.OutputPath == "" || !release.IsVideoFile(item.OutputPath) {
		return clientInfo
	}
	file := filepath.Base(item.OutputPath)
	return s.mapper.ResolveLocal(matching.LocalEpisode{
		Path:               item.OutputPath,
		FileInfo:           s.parser.ParseTitle(file),
		FolderInfo:         s.parser.ParseTitle(filepath.Base(filepath.Dir(item.OutputPath))),
		DownloadClientInfo: clientInfo,
	}, 0)
}

func (s *Service) warnAmbiguous(td *TrackedDownload, outcome matching.Outcome) {
	s.log.Debug("found multiple series", "download_id", td.DownloadID, "series", outcome.CandidateTitles())
	td.Warn(warnMultipleSeries, outcome.CandidateTitles())
}

// rematch matches td again from its client title, as after a catalog
// change. History is not consulted. A part offset is applied in memory
// only; nothing on disk is renamed.
func (s *Service) rematch(td *TrackedDownload) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("rematch panicked", "download_id", td.DownloadID, "panic", r)
			td.RemoteEpisode = nil
			td.Warn(warnParseFailure)
		}
	}()

	td.RemoteEpisode = nil
	parsed := s.parser.ParseTitle(td.ClientItem.Title)
	if parsed == nil {
		return
	}
	outcome, err := s.mapper.Map(parsed, 0, nil)
	if err != nil {
		s.log.Debug("rematch failed", "download_id", td.DownloadID, "error", err)
		td.Warn(warnParseFailure)
		return
	}
	if outcome.Kind == matching.Ambiguous {
		s.warnAmbiguous(td, outcome)
		return
	}
	td.RemoteEpisode = outcome.RemoteEpisode()
	if td.RemoteEpisode == nil {
		return
	}
	if !s.skipReconcile {
		if res := s.reconcile(td.RemoteEpisode, td.ClientItem.Title, nil); res.applied {
			outcome, err := s.mapper.Map(td.RemoteEpisode.ParsedInfo, td.RemoteEpisode.Series.ID, res.episodeIDs)
			if err != nil {
				s.log.Debug("rematch offset failed", "download_id", td.DownloadID, "error", err)
				td.RemoteEpisode = nil
				td.Warn(warnParseFailure)
				return
			}
			td.RemoteEpisode = outcome.RemoteEpisode()
			if td.RemoteEpisode == nil {
				return
			}
		}
	}
	s.augmenter.Augment(td.RemoteEpisode)
	if s.scorer != nil {
		formats := s.scorer.Score(td.RemoteEpisode, td.ClientItem.TotalSize)
		td.RemoteEpisode.CustomFormats = formats
		td.RemoteEpisode.CustomFormatScore = matching.TotalScore(formats)
	}
}

// logItemChange logs a download whose client state changed since prev.
func (s *Service) logItemChange(td *TrackedDownload, prev, item *download.ClientItem) {
	if prev != nil &&
		prev.Status == item.Status &&
		prev.CanBeRemoved == item.CanBeRemoved &&
		prev.CanMoveFiles == item.CanMoveFiles {
		return
	}

	clientState := string(item.Status)
	if !item.CanBeRemoved {
		if item.CanMoveFiles {
			clientState += " (busy)"
		} else {
			clientState += " (readonly)"
		}
	}
	var episode string
	if td.RemoteEpisode != nil {
		episode = td.RemoteEpisode.ParsedInfo.String()
	}
	s.log.Debug("tracking download",
		"client", item.Client.Name,
		"title", item.Title,
		"client_state", clientState,
		"state", td.State.String(),
		"episode", episode,
		"output_path", item.OutputPath)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.Warn("failed to publish event", "type", e.EventType(), "error", err)
	}
}

// grabbedEpisodeIDs returns the distinct episode ids of grab records in
// history order.
func grabbedEpisodeIDs(records []*history.Record) []int64 {
	var ids []int64
	for _, r := range records {
		if r.EventType == history.EventGrabbed && r.EpisodeID > 0 && !slices.Contains(ids, r.EpisodeID) {
			ids = append(ids, r.EpisodeID)
		}
	}
	return ids
}
