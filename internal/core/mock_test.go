package core

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/idresolve/internal/core/enrich"
	"github.com/agenthands/idresolve/internal/core/model"
)

type MockDriver struct {
	Queries    []string
	MockResult neo4j.EagerResult
	Err        error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

type MockLookup struct {
	Profiles map[string]model.ExternalProfile
}

func (m *MockLookup) Lookup(ctx context.Context, id string) (*model.ExternalProfile, error) {
	p, ok := m.Profiles[id]
	if !ok {
		return nil, enrich.ErrNotFound
	}
	return &p, nil
}
