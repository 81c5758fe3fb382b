package matching

import (
	"regexp"
	"strings"

	"github.com/vmunix/trackarr/pkg/release"
)

// AugmentStep fills in one aspect of a matched release.
type AugmentStep interface {
	Augment(remote *RemoteEpisode)
}

// Augmenter runs its steps in order over a matched release.
type Augmenter struct {
	steps []AugmentStep
}

// NewAugmenter creates an augmenter with the default steps.
func NewAugmenter(steps ...AugmentStep) *Augmenter {
	if len(steps) == 0 {
		steps = []AugmentStep{ReleaseGroupStep{}, QualityStep{}}
	}
	return &Augmenter{steps: steps}
}

// Augment applies every step to remote. A nil remote is ignored.
func (a *Augmenter) Augment(remote *RemoteEpisode) {
	if remote == nil {
		return
	}
	for _, step := range a.steps {
		step.Augment(remote)
	}
}

var trailingGroupRe = regexp.MustCompile(`-([A-Za-z0-9]+)$`)

// ReleaseGroupStep takes the group from the parse, falling back to the
// trailing "-GROUP" of the grabbed release title.
type ReleaseGroupStep struct{}

func (ReleaseGroupStep) Augment(remote *RemoteEpisode) {
	if remote.ParsedInfo != nil && remote.ParsedInfo.ReleaseGroup != "" {
		remote.ReleaseGroup = remote.ParsedInfo.ReleaseGroup
		return
	}
	if remote.Release == nil {
		return
	}
	title := strings.TrimSpace(remote.Release.Title)
	if m := trailingGroupRe.FindStringSubmatch(title); m != nil {
		remote.ReleaseGroup = m[1]
	}
}

// QualityStep decodes quality from the parse, preferring the grabbed
// release title when the live title lost it.
type QualityStep struct{}

func (QualityStep) Augment(remote *RemoteEpisode) {
	var q Quality
	if p := remote.ParsedInfo; p != nil {
		q = Quality{Resolution: p.Resolution, Source: p.Source, Revision: max(p.Version, 1)}
	}
	if q.Resolution == release.ResolutionUnknown && remote.Release != nil && remote.Release.Title != "" {
		if grabbed := release.ParseTitle(remote.Release.Title); grabbed != nil {
			q.Resolution = grabbed.Resolution
			if q.Source == release.SourceUnknown {
				q.Source = grabbed.Source
			}
		}
	}
	remote.Quality = q
}
