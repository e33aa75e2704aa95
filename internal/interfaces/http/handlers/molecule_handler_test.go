package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

func TestMoleculeHandler_AnalyzeSMILES(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/analyze", h.Analyze, gin.H{"smiles": "CCO"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	decodeJSON(t, w, &resp)
	assert.Len(t, resp.Analysis.Annotations, 3)
	require.Len(t, resp.Analysis.Groups, 1)
	assert.Equal(t, chem.GroupAlcohol, resp.Analysis.Groups[0].Tag)
	assert.NotEmpty(t, resp.SMILES)
}

func TestMoleculeHandler_AnalyzeCacheHit(t *testing.T) {
	cache := newFakeAnalysisCache()
	h := NewMoleculeHandler(nil, nil, cache, nil, nil)

	body := gin.H{"smiles": "CCO"}

	w := performJSON(t, http.MethodPost, "/analyze", h.Analyze, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, cache.sets)

	// Poison the cached entry so a hit is distinguishable from a recompute.
	for key := range cache.entries {
		cache.entries[key] = reaction.Analysis{TotalCharge: 99}
	}

	w = performJSON(t, http.MethodPost, "/analyze", h.Analyze, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, 99, resp.Analysis.TotalCharge)
	assert.Equal(t, 1, cache.sets, "a hit never rewrites the entry")
}

func TestMoleculeHandler_AnalyzeMissingInput(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/analyze", h.Analyze, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "COMMON_002", resp.Code)
}

func TestMoleculeHandler_AnalyzeInvalidSMILES(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/analyze", h.Analyze, gin.H{"smiles": "C1CC"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "FMT_001", resp.Code)
}

func TestMoleculeHandler_ConvertToSDF(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/convert", h.Convert, gin.H{
		"smiles": "CCO",
		"to":     "sdf",
		"name":   "ethanol",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Format string `json:"format"`
		Data   string `json:"data"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "sdf", resp.Format)
	assert.True(t, strings.HasPrefix(resp.Data, "ethanol"))
	assert.Contains(t, resp.Data, "M  END")
}

func TestMoleculeHandler_ConvertToDocument(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/convert", h.Convert, gin.H{
		"smiles": "C=C",
		"to":     "document",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data chem.MoleculeDocument `json:"data"`
	}
	decodeJSON(t, w, &resp)
	assert.Len(t, resp.Data.Atoms, 2)
	require.Len(t, resp.Data.Bonds, 1)
	assert.Equal(t, 2, resp.Data.Bonds[0].Order)
}

func TestMoleculeHandler_ConvertUnknownFormat(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/convert", h.Convert, gin.H{
		"smiles": "CCO",
		"to":     "pdb",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "FMT_003", resp.Code)
}

func TestMoleculeHandler_CreateAndGet(t *testing.T) {
	store := newFakeStore()
	h := NewMoleculeHandler(nil, store, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/molecules", h.Create, gin.H{
		"smiles": "CCO",
		"name":   "ethanol",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, w, &created)
	require.NotEmpty(t, created.ID)

	rec := store.records[created.ID]
	require.NotNil(t, rec)
	assert.Equal(t, "ethanol", rec.Name)
	assert.Equal(t, 3, rec.AtomCount)
	assert.Equal(t, 2, rec.BondCount)
	assert.NotEmpty(t, rec.SMILES)
}

func TestMoleculeHandler_GetNotFound(t *testing.T) {
	h := NewMoleculeHandler(nil, newFakeStore(), nil, nil, nil)

	r := gin.New()
	r.GET("/molecules/:id", h.Get)
	w := performRoute(t, r, http.MethodGet, "/molecules/nope")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoleculeHandler_Delete(t *testing.T) {
	store := newFakeStore()
	h := NewMoleculeHandler(nil, store, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/molecules", h.Create, gin.H{"smiles": "CCO"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, w, &created)

	r := gin.New()
	r.DELETE("/molecules/:id", h.Delete)
	res := performRoute(t, r, http.MethodDelete, "/molecules/"+created.ID)
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.Empty(t, store.records)
}

func TestMoleculeHandler_StorageNotConfigured(t *testing.T) {
	h := NewMoleculeHandler(nil, nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/molecules", h.Create, gin.H{"smiles": "CCO"})
	require.Equal(t, http.StatusNotImplemented, w.Code)

	w = performJSON(t, http.MethodGet, "/molecules", h.List, nil)
	require.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestMoleculeHandler_List(t *testing.T) {
	store := newFakeStore()
	h := NewMoleculeHandler(nil, store, nil, nil, nil)

	for _, s := range []string{"CCO", "C=C"} {
		w := performJSON(t, http.MethodPost, "/molecules", h.Create, gin.H{"smiles": s})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := performJSON(t, http.MethodGet, "/molecules", h.List, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, 2, resp.Count)
}
