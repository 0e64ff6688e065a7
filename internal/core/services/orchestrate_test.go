package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henry-johnson/spotify-playlist-creator/internal/core/domain"
)

// builderFor returns an EngineBuilder backed by per-user fakes, so each
// name resolves to an isolated catalog.
func builderFor(catalogs map[string]*fakeCatalog, buildErrs map[string]error) EngineBuilder {
	return func(ctx context.Context, user string) (*Engine, error) {
		if err := buildErrs[user]; err != nil {
			return nil, err
		}
		return newTestEngine(catalogs[user], &fakeCurator{description: "weekly"}, EngineConfig{}), nil
	}
}

func TestRun_IsolatesUserFailures(t *testing.T) {
	healthy := newFakeCatalog()
	skipped := newFakeCatalog()
	skipped.topTracks = []domain.Track{track("lonely", "a1")} // below the history floor
	failing := newFakeCatalog()
	failing.meErr = errors.New("credentials revoked")

	catalogs := map[string]*fakeCatalog{"alice": failing, "bob": skipped, "carol": healthy}
	orch := NewOrchestrator(builderFor(catalogs, nil), zerolog.Nop())

	report := orch.Run(context.Background(), []string{"alice", "bob", "carol"}, week35)

	require.Len(t, report.Results, 3)
	assert.Equal(t, week35, report.Week)

	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Reason, "credentials revoked")

	assert.Equal(t, OutcomeSkipped, report.Results[1].Outcome)
	assert.Contains(t, report.Results[1].Reason, "insufficient listening history")

	assert.Equal(t, OutcomeSuccess, report.Results[2].Outcome)
	assert.NotZero(t, report.Results[2].Result.MixLen, "the user after two failures still publishes")
	assert.Len(t, healthy.playlists, 1)
}

func TestRun_BuilderFailureIsReported(t *testing.T) {
	catalogs := map[string]*fakeCatalog{"ok": newFakeCatalog()}
	buildErrs := map[string]error{"broken": errors.New("missing refresh token")}
	orch := NewOrchestrator(builderFor(catalogs, buildErrs), zerolog.Nop())

	report := orch.Run(context.Background(), []string{"broken", "ok"}, week35)

	require.Len(t, report.Results, 2)
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Reason, "missing refresh token")
	assert.Equal(t, OutcomeSuccess, report.Results[1].Outcome)
}

func TestRun_AssignsDistinctRunIDs(t *testing.T) {
	catalogs := map[string]*fakeCatalog{"a": newFakeCatalog(), "b": newFakeCatalog()}
	orch := NewOrchestrator(builderFor(catalogs, nil), zerolog.Nop())

	report := orch.Run(context.Background(), []string{"a", "b"}, week35)

	require.Len(t, report.Results, 2)
	assert.NotEmpty(t, report.Results[0].RunID)
	assert.NotEmpty(t, report.Results[1].RunID)
	assert.NotEqual(t, report.Results[0].RunID, report.Results[1].RunID)
}

func TestRunReport_AllFailed(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		want     bool
	}{
		{name: "empty report is not a failure", outcomes: nil, want: false},
		{name: "every user failed", outcomes: []Outcome{OutcomeFailed, OutcomeFailed}, want: true},
		{name: "a skip keeps the run usable", outcomes: []Outcome{OutcomeFailed, OutcomeSkipped}, want: false},
		{name: "a success keeps the run usable", outcomes: []Outcome{OutcomeSuccess, OutcomeFailed}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := RunReport{Week: week35}
			for _, o := range tt.outcomes {
				report.Results = append(report.Results, UserResult{Outcome: o})
			}
			assert.Equal(t, tt.want, report.AllFailed())
		})
	}
}
