package domain

// Track is a playable item from the catalog.
type Track struct {
	ID          string
	Name        string
	ArtistIDs   []string
	ArtistNames []string
	AlbumID     string // optional
	Popularity  int
}

// Artist is a catalog artist together with its genre labels.
type Artist struct {
	ID     string
	Name   string
	Genres []string
}
