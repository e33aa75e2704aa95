package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

func TestReactionHandler_Classify(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/classify", h.Classify, gin.H{
		"reagents": []string{"KMnO4"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Category string `json:"category"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "oxidation", resp.Category)
}

func TestReactionHandler_ClassifyUnknown(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/classify", h.Classify, gin.H{
		"reagents": []string{"mystery"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Category string `json:"category"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "unknown", resp.Category)
}

func TestReactionHandler_ValidateAccepted(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/validate", h.Validate, gin.H{
		"smiles":   "CCO",
		"reagents": []string{"KMnO4"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var verdict chem.ReactionVerdict
	decodeJSON(t, w, &verdict)
	assert.True(t, verdict.Valid)
	assert.Equal(t, "oxidation", verdict.Category)
	assert.Equal(t, 90, verdict.Score)
}

func TestReactionHandler_ValidateRejected(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/validate", h.Validate, gin.H{
		"smiles":   "CCO",
		"reagents": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var verdict chem.ReactionVerdict
	decodeJSON(t, w, &verdict)
	assert.False(t, verdict.Valid)
	require.Len(t, verdict.Errors, 1)
}

func TestReactionHandler_ValidateCacheHit(t *testing.T) {
	cache := newFakeCache()
	h := NewReactionHandler(nil, cache, nil, nil)

	body := gin.H{"smiles": "CCO", "reagents": []string{"KMnO4"}}

	w := performJSON(t, http.MethodPost, "/validate", h.Validate, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, cache.sets)

	// Poison the cached entry so a hit is distinguishable from a recompute.
	for key := range cache.entries {
		cache.entries[key] = chem.ReactionVerdict{Valid: true, Category: "oxidation", Score: 42}
	}

	w = performJSON(t, http.MethodPost, "/validate", h.Validate, body)
	require.Equal(t, http.StatusOK, w.Code)

	var verdict chem.ReactionVerdict
	decodeJSON(t, w, &verdict)
	assert.Equal(t, 42, verdict.Score)
	assert.Equal(t, 1, cache.sets, "a hit never rewrites the entry")
}

func TestReactionHandler_ValidateCacheWriteFailureIsNonFatal(t *testing.T) {
	cache := newFakeCache()
	cache.setErr = assert.AnError
	h := NewReactionHandler(nil, cache, nil, nil)

	w := performJSON(t, http.MethodPost, "/validate", h.Validate, gin.H{
		"smiles":   "CCO",
		"reagents": []string{"KMnO4"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var verdict chem.ReactionVerdict
	decodeJSON(t, w, &verdict)
	assert.True(t, verdict.Valid)
}

func TestReactionHandler_TransformAccepted(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/transform", h.Transform, gin.H{
		"smiles":   "CCO",
		"reagents": []string{"KMnO4"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp TransformResponse
	decodeJSON(t, w, &resp)
	assert.True(t, resp.Verdict.Valid)
	assert.NotEmpty(t, resp.Product.Atoms)
	assert.NotEmpty(t, resp.SMILES)

	// Oxidation promotes the C-O to a double bond.
	found := false
	for _, b := range resp.Product.Bonds {
		if b.Order == 2 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestReactionHandler_TransformRejected(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/transform", h.Transform, gin.H{
		"smiles":     "CC(=O)C",
		"reagents":   []string{"LiAlH4"},
		"conditions": []string{"H2O"},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Error   string               `json:"error"`
		Verdict chem.ReactionVerdict `json:"verdict"`
	}
	decodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.Error)
	assert.False(t, resp.Verdict.Valid)
	require.NotEmpty(t, resp.Verdict.Errors)
}

func TestReactionHandler_TransformBadInput(t *testing.T) {
	h := NewReactionHandler(nil, nil, nil, nil)

	w := performJSON(t, http.MethodPost, "/transform", h.Transform, gin.H{
		"reagents": []string{"KMnO4"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
