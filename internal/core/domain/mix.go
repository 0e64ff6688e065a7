package domain

// Provenance records which assembly slot produced a mix entry.
type Provenance string

const (
	ProvenanceAI       Provenance = "ai-discovery"
	ProvenanceAnchor   Provenance = "familiar-anchor"
	ProvenanceFallback Provenance = "fallback-search"
)

// CandidateTrack is a track proposed for the mix, tagged with where it
// came from so ranking and reporting can tell the tiers apart.
type CandidateTrack struct {
	Track       Track
	Provenance  Provenance
	SourceQuery string // the search text that surfaced it, when applicable
}

// SlotBudgets sizes the three assembly slots. AI and Anchor are hard caps;
// the fallback slot stretches until Target is reached or sources run dry.
type SlotBudgets struct {
	AI     int
	Anchor int
	Target int
}

// DefaultSlotBudgets returns the sizing the tool ships with.
func DefaultSlotBudgets() SlotBudgets {
	return SlotBudgets{AI: 15, Anchor: 5, Target: 28}
}

// SlotCounts reports how many tracks each slot actually contributed.
type SlotCounts struct {
	AI       int
	Anchor   int
	Fallback int
}

// DiscoveryMix is the ordered, duplicate-free track list a run publishes.
// Add enforces the uniqueness and length invariants; there is no other way
// to grow a mix.
type DiscoveryMix struct {
	ids    []string
	seen   map[string]struct{}
	counts SlotCounts
	limit  int
}

// NewDiscoveryMix returns an empty mix holding at most limit tracks.
func NewDiscoveryMix(limit int) *DiscoveryMix {
	if limit <= 0 {
		limit = DefaultSlotBudgets().Target
	}
	return &DiscoveryMix{
		seen:  make(map[string]struct{}, limit),
		limit: limit,
	}
}

// Add appends a track ID under the given provenance. It refuses empty IDs,
// duplicates, and additions past the limit, and reports whether the ID
// landed.
func (m *DiscoveryMix) Add(id string, p Provenance) bool {
	if id == "" || len(m.ids) >= m.limit {
		return false
	}
	if _, dup := m.seen[id]; dup {
		return false
	}
	m.seen[id] = struct{}{}
	m.ids = append(m.ids, id)
	switch p {
	case ProvenanceAI:
		m.counts.AI++
	case ProvenanceAnchor:
		m.counts.Anchor++
	case ProvenanceFallback:
		m.counts.Fallback++
	}
	return true
}

// Contains reports whether the track is already in the mix.
func (m *DiscoveryMix) Contains(id string) bool {
	_, ok := m.seen[id]
	return ok
}

// Len returns the number of tracks in the mix.
func (m *DiscoveryMix) Len() int { return len(m.ids) }

// Remaining returns how many slots are still open.
func (m *DiscoveryMix) Remaining() int { return m.limit - len(m.ids) }

// TrackIDs returns the mix contents in insertion order.
func (m *DiscoveryMix) TrackIDs() []string {
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// Counts reports per-slot contributions.
func (m *DiscoveryMix) Counts() SlotCounts { return m.counts }
