package enrich

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/idresolve/internal/core/model"
)

type MockLookup struct {
	Profile *model.ExternalProfile
	Err     error
	Panic   bool
}

func (m *MockLookup) Lookup(ctx context.Context, id string) (*model.ExternalProfile, error) {
	if m.Panic {
		panic("registry exploded")
	}
	return m.Profile, m.Err
}

func TestStaticLookup(t *testing.T) {
	s := NewStaticLookup(map[string]model.ExternalProfile{
		"0000-0001": {ExtractedNames: []string{"Ivan Petrov"}, PublicationCount: 12},
	})
	p, err := s.Lookup(context.Background(), "0000-0001")
	require.NoError(t, err)
	assert.Equal(t, 12, p.PublicationCount)

	_, err = s.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	s.Put("missing", model.ExternalProfile{PublicationCount: 1})
	p, err = s.Lookup(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PublicationCount)
}

func TestLoadStaticLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"0000-0002": {"extracted_names": ["Anna Smith"], "publication_count": 40, "h_index": 15,
			"last_activity": "2024-05-01T00:00:00Z", "research_areas": ["optics"]}
	}`), 0o600))

	s, err := LoadStaticLookup(path)
	require.NoError(t, err)
	p, err := s.Lookup(context.Background(), "0000-0002")
	require.NoError(t, err)
	require.NotNil(t, p.HIndex)
	assert.Equal(t, 15, *p.HIndex)
	require.NotNil(t, p.LastActivity)
	assert.Equal(t, []string{"optics"}, p.ResearchAreas)

	_, err = LoadStaticLookup(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestEnricher_Failures(t *testing.T) {
	ctx := context.Background()

	p, err := NewEnricher(&MockLookup{Panic: true}, nil).Enrich(ctx, "x")
	assert.Nil(t, p)
	assert.Error(t, err)

	p, err = NewEnricher(&MockLookup{Err: errors.New("timeout")}, nil).Enrich(ctx, "x")
	assert.Nil(t, p)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = NewEnricher(&MockLookup{}, nil).Enrich(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	var nilEnricher *Enricher
	_, err = nilEnricher.Enrich(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnricher_Success(t *testing.T) {
	want := &model.ExternalProfile{PublicationCount: 3}
	p, err := NewEnricher(&MockLookup{Profile: want}, nil).Enrich(context.Background(), "x")
	require.NoError(t, err)
	assert.Same(t, want, p)
}
