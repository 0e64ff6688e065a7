package domain

// Playlist is a playlist's identity as the catalog reports it. Its tracks
// are fetched separately because the catalog pages them.
type Playlist struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	TrackTotal  int
}
