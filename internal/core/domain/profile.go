package domain

import "strings"

// User identifies the listener a pipeline run acts on behalf of.
type User struct {
	ID          string
	DisplayName string
	Market      string // country code applied to catalog searches
}

// FirstName returns the leading word of the display name, falling back to
// the user ID when the catalog reports no name.
func (u User) FirstName() string {
	fields := strings.Fields(u.DisplayName)
	if len(fields) == 0 {
		return u.ID
	}
	return fields[0]
}

// ListeningProfile captures the listener's current short-term taste. It is
// rebuilt from the catalog on every run and never persisted.
type ListeningProfile struct {
	User       User
	TopTracks  []Track
	TopArtists []Artist
}

// Genres aggregates up to limit genre labels from the top artists, ordered
// by first appearance. A limit of zero or less means no cap.
func (p ListeningProfile) Genres(limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range p.TopArtists {
		for _, g := range a.Genres {
			if _, dup := seen[g]; dup || g == "" {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}
