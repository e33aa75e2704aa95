package reaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		name       string
		reagents   []string
		conditions []string
		want       string
	}{
		{"oxidation", []string{"KMnO4"}, nil, CategoryOxidation},
		{"reduction", []string{"NaBH4"}, nil, CategoryReduction},
		{"plain_base_is_elimination", []string{"KOH"}, nil, CategoryElimination},
		{"base_plus_heat_is_aldol", []string{"KOH"}, []string{"heat"}, CategoryAldolCondensation},
		{"base_heat_dilute_is_retro_aldol", []string{"KOH"}, []string{"heat", "dilute"}, CategoryRetroAldol},
		{"halogenation", []string{"Br2"}, nil, CategoryHalogenation},
		{"hydrohalogenation", []string{"HBr"}, nil, CategoryHydrohalogenation},
		{"dehydration", []string{"H2SO4"}, []string{"heat"}, CategoryDehydration},
		{"acid_without_heat_is_unknown", []string{"H2SO4"}, nil, CategoryUnknown},
		{"no_match", []string{"NaCl"}, nil, CategoryUnknown},
		{"empty", nil, nil, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.reagents, tt.conditions))
		})
	}
}

func TestClassify_CoReagents(t *testing.T) {
	c := NewClassifier(nil, nil)

	assert.Equal(t, CategoryFriedelCraftsAcyl,
		c.Classify([]string{"CH3COCl", "AlCl3"}, nil))
	assert.Equal(t, CategoryUnknown,
		c.Classify([]string{"CH3COCl"}, nil),
		"the Lewis-acid catalyst is mandatory")
}

func TestClassifier_TableIsExtensible(t *testing.T) {
	custom := append([]Category{{
		Name:     "ozonolysis",
		Reagents: []string{"O3"},
	}}, DefaultCategories()...)
	c := NewClassifier(custom, nil)

	assert.Equal(t, "ozonolysis", c.Classify([]string{"O3"}, nil))
	assert.Equal(t, CategoryOxidation, c.Classify([]string{"KMnO4"}, nil),
		"existing rows still match")
}

func TestClassifier_Lookup(t *testing.T) {
	c := NewClassifier(nil, nil)

	cat, ok := c.Lookup(CategoryOxidation)
	require.True(t, ok)
	assert.Contains(t, cat.Reagents, "KMnO4")

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}
