package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/idresolve/internal/config"
	"github.com/agenthands/idresolve/internal/core/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	srv, cleanup, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return srv.SetupRouter()
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, nil)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", nil).Code)

	w := do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestResolveProfile(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(t, r, http.MethodPost, "/v1/profiles/resolve", ResolveRequest{
		Target: model.TargetHints{ContactAddress: "jsmith@uni.edu"},
		Extractions: []model.RawExtraction{
			{Value: "John Smith", FieldType: model.FieldName, SourceURL: "https://uni.edu/a", SourceType: model.SourceTitle},
			{Value: "John Smith", FieldType: model.FieldName, SourceURL: "https://uni.edu/b", SourceType: model.SourceMeta},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var p model.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "John Smith", p.Fields[model.FieldName].Value)
	assert.NotEmpty(t, p.RunID)

	bad := do(t, r, http.MethodPost, "/v1/profiles/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestRankCandidates_WithProfileFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"0000-0001": {"extracted_names": ["John Smith"], "publication_count": 12}}`), 0o600))
	cfg := config.Default()
	cfg.Enrichment.ProfilesPath = path
	r := newTestRouter(t, cfg)

	w := do(t, r, http.MethodPost, "/v1/candidates/rank", RankRequest{
		Target: model.TargetHints{Name: "John Smith", Context: model.ContextAcademic},
		Candidates: []model.IdentifierCandidate{
			{Identifier: "0000-0002", SourceURL: "https://orcid.org/0000-0002"},
			{Identifier: "0000-0001", SourceURL: "https://orcid.org/0000-0001", SearchPosition: 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Best       string                   `json:"best"`
		Candidates []model.RankingCandidate `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "0000-0001", resp.Candidates[0].Identifier)
	assert.Equal(t, "0000-0001", resp.Best)
	assert.True(t, resp.Candidates[0].Enriched)
}

func TestFeedbackRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(t, r, http.MethodPost, "/v1/feedback", model.Feedback{SelectedID: "a", CorrectID: "b", ReporterConfidence: 0.6})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/v1/feedback", model.Feedback{SelectedID: "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/v1/feedback/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.FeedbackStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Correct)
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Feedback.Driver = "postgres"
	_, cleanup, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
	cleanup()

	cfg = config.Default()
	cfg.Enrichment.ProfilesPath = filepath.Join(t.TempDir(), "missing.json")
	_, cleanup, err = Build(context.Background(), cfg, nil)
	assert.Error(t, err)
	cleanup()
}
