package services

import (
	"sort"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

// RankCandidates drops tracks the listener already knows and duplicate
// candidates (first occurrence wins), then orders the survivors by novelty:
// tracks by unfamiliar artists first, ties in discovery order. The result
// is deterministic for identical inputs.
func RankCandidates(candidates []domain.CandidateTrack, snapshot domain.SourceSnapshot) []domain.CandidateTrack {
	seen := make(map[string]struct{}, len(candidates))
	kept := make([]domain.CandidateTrack, 0, len(candidates))
	for _, c := range candidates {
		id := c.Track.ID
		if id == "" || snapshot.KnownTrack(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return noveltyScore(kept[i], snapshot) > noveltyScore(kept[j], snapshot)
	})
	return kept
}

// noveltyScore rates a candidate: full marks for a track whose artists are
// all new to the listener, one less when any artist is familiar.
func noveltyScore(c domain.CandidateTrack, snapshot domain.SourceSnapshot) int {
	score := 2
	if snapshot.KnownAnyArtist(c.Track.ArtistIDs) {
		score--
	}
	return score
}
