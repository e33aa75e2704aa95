package redis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

func newKeyOnlyCache(opts ...VerdictCacheOption) *VerdictCache {
	return NewVerdictCache(NewClientWith(nil, nil), nil, opts...)
}

func sampleDoc() chem.MoleculeDocument {
	return chem.MoleculeDocument{
		Name: "ethanol",
		Atoms: []chem.AtomSpec{
			{ID: 1, Element: "C"},
			{ID: 2, Element: "C"},
			{ID: 3, Element: "O"},
		},
		Bonds: []chem.BondSpec{
			{Atom1: 1, Atom2: 2, Order: 1},
			{Atom1: 2, Atom2: 3, Order: 1},
		},
	}
}

func TestVerdictCacheKey_Deterministic(t *testing.T) {
	c := newKeyOnlyCache()
	req := chem.ReactionRequest{Reagents: []string{"KMnO4"}, Conditions: []string{"heat"}}

	assert.Equal(t, c.Key(sampleDoc(), req), c.Key(sampleDoc(), req))
}

func TestVerdictCacheKey_OrderInsensitiveRequest(t *testing.T) {
	c := newKeyOnlyCache()

	k1 := c.Key(sampleDoc(), chem.ReactionRequest{Reagents: []string{"NaOH", "KMnO4"}})
	k2 := c.Key(sampleDoc(), chem.ReactionRequest{Reagents: []string{"KMnO4", "NaOH"}})
	assert.Equal(t, k1, k2)
}

func TestVerdictCacheKey_SensitiveToContent(t *testing.T) {
	c := newKeyOnlyCache()
	base := chem.ReactionRequest{Reagents: []string{"KMnO4"}}

	k1 := c.Key(sampleDoc(), base)

	other := sampleDoc()
	other.Atoms[2].Element = "N"
	assert.NotEqual(t, k1, c.Key(other, base))

	assert.NotEqual(t, k1, c.Key(sampleDoc(), chem.ReactionRequest{Reagents: []string{"NaBH4"}}))
	assert.NotEqual(t, k1, c.Key(sampleDoc(), chem.ReactionRequest{
		Reagents: []string{"KMnO4"}, Category: "oxidation",
	}))
}

func TestVerdictCacheKey_Prefix(t *testing.T) {
	c := newKeyOnlyCache(WithPrefix("test:verdict:"))
	key := c.Key(sampleDoc(), chem.ReactionRequest{})
	assert.True(t, strings.HasPrefix(key, "test:verdict:"))
}

func TestAnalysisCacheKey_Deterministic(t *testing.T) {
	c := NewAnalysisCache(NewClientWith(nil, nil), nil)

	assert.Equal(t, c.Key(sampleDoc()), c.Key(sampleDoc()))

	other := sampleDoc()
	other.Atoms[2].Element = "N"
	assert.NotEqual(t, c.Key(sampleDoc()), c.Key(other))
}

func TestAnalysisCacheKey_Prefix(t *testing.T) {
	c := NewAnalysisCache(NewClientWith(nil, nil), nil, WithAnalysisPrefix("test:analysis:"))
	assert.True(t, strings.HasPrefix(c.Key(sampleDoc()), "test:analysis:"))
}

func TestJitterTTL(t *testing.T) {
	base := 10 * time.Minute
	for i := 0; i < 100; i++ {
		ttl := jitterTTL(base)
		assert.GreaterOrEqual(t, ttl, 9*time.Minute)
		assert.LessOrEqual(t, ttl, 11*time.Minute)
	}
	assert.Equal(t, time.Duration(0), jitterTTL(0))
}
