package tracking

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . HistoryProvider,DownloadHistoryProvider,EpisodeCatalog,Publisher

import (
	"context"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/events"
	"github.com/vmunix/trackarr/internal/history"
	"github.com/vmunix/trackarr/internal/matching"
	"github.com/vmunix/trackarr/pkg/release"
)

// TitleParser turns release titles into episode information.
type TitleParser interface {
	ParseTitle(title string) *release.ParsedEpisodeInfo
	ParsePartNumber(title string) (int, bool)
}

// EpisodeMapper resolves parsed titles against the catalog.
type EpisodeMapper interface {
	Map(info *release.ParsedEpisodeInfo, seriesID int64, episodeIDs []int64) (matching.Outcome, error)
	ParseSpecialEpisodeTitle(info *release.ParsedEpisodeInfo, title string, seriesID int64, episodeIDs []int64) *release.ParsedEpisodeInfo
	ResolveLocal(local matching.LocalEpisode, seriesID int64) *release.ParsedEpisodeInfo
}

// EpisodeCatalog lists the episodes of a season, finale markers included.
type EpisodeCatalog interface {
	EpisodesInSeason(seriesID int64, season int) ([]*catalog.Episode, error)
}

// HistoryProvider returns the episode history of a download, newest first.
type HistoryProvider interface {
	FindByDownloadID(downloadID string) ([]*history.Record, error)
}

// DownloadHistoryProvider returns the latest recorded outcome of a
// download, or an error wrapping history.ErrNotFound.
type DownloadHistoryProvider interface {
	LatestByDownloadID(downloadID string) (*history.DownloadRecord, error)
}

// Augmenter decorates a matched release, e.g. with quality and group.
type Augmenter interface {
	Augment(remote *matching.RemoteEpisode)
}

// Scorer computes the custom formats a matched release satisfies.
type Scorer interface {
	Score(remote *matching.RemoteEpisode, size int64) []matching.CustomFormat
}

// Publisher delivers tracker notifications.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Deps are the collaborators of a Service. Mapper, Catalog, History and
// DownloadHistory are required; the rest fall back to defaults.
type Deps struct {
	Parser          TitleParser
	Mapper          EpisodeMapper
	Catalog         EpisodeCatalog
	History         HistoryProvider
	DownloadHistory DownloadHistoryProvider
	Augmenter       Augmenter
	Scorer          Scorer
	FS              FileSystem
	Bus             Publisher
	Metrics         *Metrics

	// SkipReconcile disables split-season part offsets and renames.
	SkipReconcile bool
}
