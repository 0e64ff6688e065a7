package domain

import "sort"

// SnapshotOrigin records which source seeded a run's familiarity data.
type SnapshotOrigin string

const (
	// SnapshotFromPlaylist means last week's playlist seeded the snapshot.
	SnapshotFromPlaylist SnapshotOrigin = "previous-playlist"
	// SnapshotFromTopItems means the listener's top items seeded it.
	SnapshotFromTopItems SnapshotOrigin = "top-items"
)

// SourceSnapshot is the familiarity baseline for one run: the tracks the
// listener is assumed to know, the artists worth naming in a curation
// brief, and the derived known-ID sets. Exactly one origin feeds a
// snapshot; the two are never merged.
type SourceSnapshot struct {
	Origin         SnapshotOrigin
	Tracks         []Track
	Artists        []Artist
	KnownTrackIDs  map[string]struct{}
	KnownArtistIDs map[string]struct{}
}

// NewSourceSnapshot derives the known-ID sets from the source tracks plus
// the briefing artists, which also count as familiar.
func NewSourceSnapshot(origin SnapshotOrigin, tracks []Track, artists []Artist) SourceSnapshot {
	s := SourceSnapshot{
		Origin:         origin,
		Tracks:         tracks,
		Artists:        artists,
		KnownTrackIDs:  make(map[string]struct{}, len(tracks)),
		KnownArtistIDs: make(map[string]struct{}),
	}
	for _, t := range tracks {
		if t.ID != "" {
			s.KnownTrackIDs[t.ID] = struct{}{}
		}
		for _, id := range t.ArtistIDs {
			if id != "" {
				s.KnownArtistIDs[id] = struct{}{}
			}
		}
	}
	for _, a := range artists {
		if a.ID != "" {
			s.KnownArtistIDs[a.ID] = struct{}{}
		}
	}
	return s
}

// KnownTrack reports whether the listener already knows the track.
func (s SourceSnapshot) KnownTrack(id string) bool {
	_, ok := s.KnownTrackIDs[id]
	return ok
}

// KnownAnyArtist reports whether any of the given artist IDs is familiar.
func (s SourceSnapshot) KnownAnyArtist(ids []string) bool {
	for _, id := range ids {
		if _, ok := s.KnownArtistIDs[id]; ok {
			return true
		}
	}
	return false
}

// TopArtistsFromTracks ranks the artists behind tracks by how many tracks
// they appear on, most frequent first. Ties keep first-appearance order.
// Genres are unknown at this level and stay empty.
func TopArtistsFromTracks(tracks []Track, limit int) []Artist {
	type entry struct {
		artist Artist
		count  int
	}
	byID := make(map[string]*entry)
	var order []*entry
	for _, t := range tracks {
		for i, id := range t.ArtistIDs {
			if id == "" {
				continue
			}
			e, ok := byID[id]
			if !ok {
				name := ""
				if i < len(t.ArtistNames) {
					name = t.ArtistNames[i]
				}
				e = &entry{artist: Artist{ID: id, Name: name}}
				byID[id] = e
				order = append(order, e)
			}
			e.count++
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].count > order[b].count })
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	out := make([]Artist, len(order))
	for i, e := range order {
		out[i] = e.artist
	}
	return out
}
