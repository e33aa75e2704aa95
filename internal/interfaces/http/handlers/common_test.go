package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// performJSON runs one request against a single-route engine and returns the
// recorder.
func performJSON(t *testing.T, method, path string, handler gin.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	r := gin.New()
	r.Handle(method, path, handler)

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

// performRoute runs a bodyless request against a prebuilt engine, for routes
// with path parameters.
func performRoute(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// fakeStore is an in-memory MoleculeStore.
type fakeStore struct {
	records map[string]*postgres.MoleculeRecord
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*postgres.MoleculeRecord)}
}

func (s *fakeStore) Save(_ context.Context, rec *postgres.MoleculeRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*postgres.MoleculeRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeNotFound, "molecule %s not found", id)
	}
	return rec, nil
}

func (s *fakeStore) List(_ context.Context, limit, offset int) ([]*postgres.MoleculeRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*postgres.MoleculeRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[id]; !ok {
		return errors.Newf(errors.ErrCodeNotFound, "molecule %s not found", id)
	}
	delete(s.records, id)
	return nil
}

// fakeCache is an in-memory VerdictCache keyed by the JSON of its inputs.
type fakeCache struct {
	entries map[string]chem.ReactionVerdict
	sets    int
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]chem.ReactionVerdict)}
}

func (c *fakeCache) Key(doc chem.MoleculeDocument, req chem.ReactionRequest) string {
	docJSON, _ := json.Marshal(doc)
	reqJSON, _ := json.Marshal(req)
	return string(docJSON) + "|" + string(reqJSON)
}

func (c *fakeCache) Get(_ context.Context, key string) (chem.ReactionVerdict, error) {
	verdict, ok := c.entries[key]
	if !ok {
		return chem.ReactionVerdict{}, errors.New(errors.ErrCodeNotFound, "cache miss")
	}
	return verdict, nil
}

func (c *fakeCache) Set(_ context.Context, key string, verdict chem.ReactionVerdict) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.entries[key] = verdict
	return nil
}

// fakeAnalysisCache is an in-memory AnalysisCache keyed by document JSON.
type fakeAnalysisCache struct {
	entries map[string]reaction.Analysis
	sets    int
}

func newFakeAnalysisCache() *fakeAnalysisCache {
	return &fakeAnalysisCache{entries: make(map[string]reaction.Analysis)}
}

func (c *fakeAnalysisCache) Key(doc chem.MoleculeDocument) string {
	docJSON, _ := json.Marshal(doc)
	return string(docJSON)
}

func (c *fakeAnalysisCache) Get(_ context.Context, key string) (reaction.Analysis, error) {
	analysis, ok := c.entries[key]
	if !ok {
		return reaction.Analysis{}, errors.New(errors.ErrCodeNotFound, "cache miss")
	}
	return analysis, nil
}

func (c *fakeAnalysisCache) Set(_ context.Context, key string, analysis reaction.Analysis) error {
	c.sets++
	c.entries[key] = analysis
	return nil
}

func TestResolveGraph(t *testing.T) {
	g, err := resolveGraph(MoleculeInput{SMILES: "CCO"})
	require.NoError(t, err)
	require.Equal(t, 3, g.AtomCount())

	doc := g.ToDocument()
	g2, err := resolveGraph(MoleculeInput{Molecule: &doc})
	require.NoError(t, err)
	require.Equal(t, 3, g2.AtomCount())

	_, err = resolveGraph(MoleculeInput{})
	require.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, err = resolveGraph(MoleculeInput{SMILES: "C1CC"})
	require.True(t, errors.IsCode(err, errors.ErrCodeFormatInvalidSMILES))
}

func TestHTTPStatusFor(t *testing.T) {
	err := errors.New(errors.ErrCodeReactionNotValidated, "rejected")
	require.Equal(t, http.StatusConflict, httpStatusFor(err))
}
