package domain

// QueryStrategy labels the angle a discovery query takes. The values form
// the wire contract with the curator and are rejected when unknown.
type QueryStrategy string

const (
	StrategySimilarArtist QueryStrategy = "similar-artist"
	StrategyGenreAdjacent QueryStrategy = "genre-adjacent"
	StrategySpecificTrack QueryStrategy = "specific-track"
	StrategyLeftField     QueryStrategy = "left-field"
)

// DiscoveryQuery is one catalog search suggested by the curator.
type DiscoveryQuery struct {
	Text     string
	Strategy QueryStrategy
}

// CurationBrief is the material the curator works from for one run: the
// listener's taste, the week being planned, and how many queries to return.
type CurationBrief struct {
	Listener     User
	SourceTracks []Track
	TopArtists   []Artist
	Genres       []string
	SourceWeek   PeriodKey
	TargetWeek   PeriodKey
	MaxQueries   int
}
