package valence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

func newCalc() *Calculator {
	return NewDefaultCalculator(logging.NewNopLogger())
}

func TestImplicitHydrogens(t *testing.T) {
	calc := newCalc()

	tests := []struct {
		name  string
		build func() (*graph.Graph, chem.AtomID)
		want  int
	}{
		{
			name: "bare_carbon",
			build: func() (*graph.Graph, chem.AtomID) {
				g := graph.New()
				return g, g.AddAtom("C", 0, 0)
			},
			want: 4,
		},
		{
			name: "ethanol_oxygen",
			build: func() (*graph.Graph, chem.AtomID) {
				g := graph.New()
				c1 := g.AddAtom("C", 0, 0)
				c2 := g.AddAtom("C", 1, 0)
				o := g.AddAtom("O", 2, 0)
				g.AddBond(c1, c2, 1)
				g.AddBond(c2, o, 1)
				return g, o
			},
			want: 1,
		},
		{
			name: "carbonyl_carbon",
			build: func() (*graph.Graph, chem.AtomID) {
				g := graph.New()
				c := g.AddAtom("C", 0, 0)
				o := g.AddAtom("O", 1, 0)
				g.AddBond(c, o, 2)
				return g, c
			},
			want: 2,
		},
		{
			name: "ammonium_nitrogen",
			build: func() (*graph.Graph, chem.AtomID) {
				g := graph.New()
				n := g.AddAtom("N", 0, 0, graph.WithCharge(1))
				c := g.AddAtom("C", 1, 0)
				g.AddBond(n, c, 1)
				return g, n
			},
			want: 1, // 3 - 1 - (+1)
		},
		{
			name: "overbonded_floors_at_zero",
			build: func() (*graph.Graph, chem.AtomID) {
				g := graph.New()
				o := g.AddAtom("O", 0, 0)
				c1 := g.AddAtom("C", 1, 0)
				c2 := g.AddAtom("C", 2, 0)
				g.AddBond(o, c1, 2)
				g.AddBond(o, c2, 2)
				return g, o
			},
			want: 0,
		},
		{
			name: "unknown_element_is_inert",
			build: func() (*graph.Graph, chem.AtomID) {
				g := graph.New()
				return g, g.AddAtom("Fe", 0, 0)
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, id := tt.build()
			assert.Equal(t, tt.want, calc.ImplicitHydrogens(g, id))
		})
	}
}

// The hydrogen count, bond-order sum, and formal charge of any atom with a
// known element must always reconcile against the standard valence.
func TestImplicitHydrogens_ReconcilesWithStandardValence(t *testing.T) {
	calc := newCalc()
	g := graph.New()
	c1 := g.AddAtom("C", 0, 0)
	c2 := g.AddAtom("C", 1, 0)
	o := g.AddAtom("O", 2, 0, graph.WithCharge(-1))
	n := g.AddAtom("N", 3, 0, graph.WithCharge(1))
	g.AddBond(c1, c2, 1)
	g.AddBond(c2, o, 1)
	g.AddBond(c2, n, 1)

	std := DefaultTables().Standard
	for _, a := range g.Atoms() {
		ih := calc.ImplicitHydrogens(g, a.ID)
		total := calc.TotalBondOrder(g, a.ID)
		if want, ok := std[a.Element]; ok && ih > 0 {
			assert.Equal(t, want, ih+total+a.Charge, "element %s", a.Element)
		}
	}
}

func TestFormalCharge(t *testing.T) {
	calc := newCalc()

	t.Run("hydroxide_oxygen", func(t *testing.T) {
		g := graph.New()
		o := g.AddAtom("O", 0, 0, graph.WithCharge(-1))
		h := g.AddAtom("H", 1, 0)
		g.AddBond(o, h, 1)
		assert.InDelta(t, -1.0, calc.FormalCharge(g, o), 1e-9)
	})

	t.Run("pentavalent_carbon", func(t *testing.T) {
		g := graph.New()
		c := g.AddAtom("C", 0, 0)
		for i := 0; i < 5; i++ {
			h := g.AddAtom("H", float64(i+1), 0)
			g.AddBond(c, h, 1)
		}
		// The electron deficit surfaces as a positive charge, not the -1 a
		// zero-clamped lone-pair count would report.
		assert.InDelta(t, 1.0, calc.FormalCharge(g, c), 1e-9)
	})

	t.Run("ammonium_nitrogen", func(t *testing.T) {
		g := graph.New()
		n := g.AddAtom("N", 0, 0, graph.WithCharge(1))
		for i := 0; i < 4; i++ {
			h := g.AddAtom("H", float64(i+1), 0)
			g.AddBond(n, h, 1)
		}
		assert.InDelta(t, 1.0, calc.FormalCharge(g, n), 1e-9)
	})

	t.Run("neutral_water_oxygen", func(t *testing.T) {
		g := graph.New()
		o := g.AddAtom("O", 0, 0)
		h1 := g.AddAtom("H", 1, 0)
		h2 := g.AddAtom("H", -1, 0)
		g.AddBond(o, h1, 1)
		g.AddBond(o, h2, 1)
		assert.InDelta(t, 0.0, calc.FormalCharge(g, o), 1e-9)
	})
}

func TestLonePairs(t *testing.T) {
	calc := newCalc()
	g := graph.New()
	o := g.AddAtom("O", 0, 0)
	c := g.AddAtom("C", 1, 0)
	n := g.AddAtom("N", 2, 0)
	g.AddBond(o, c, 2) // carbonyl
	g.AddBond(c, n, 1)

	assert.Equal(t, 2, calc.LonePairs(g, o))
	assert.Equal(t, 0, calc.LonePairs(g, c), "carbon never holds lone pairs when bonded")
	assert.Equal(t, 2, calc.LonePairs(g, n))
}

func TestIsRadical(t *testing.T) {
	calc := newCalc()

	t.Run("nitric_oxide_nitrogen", func(t *testing.T) {
		g := graph.New()
		n := g.AddAtom("N", 0, 0)
		o := g.AddAtom("O", 1, 0)
		g.AddBond(n, o, 2)
		assert.True(t, calc.IsRadical(g, n))
	})

	t.Run("saturated_carbon", func(t *testing.T) {
		g := graph.New()
		c := g.AddAtom("C", 0, 0)
		assert.False(t, calc.IsRadical(g, c))
	})

	t.Run("metal_never_reports", func(t *testing.T) {
		g := graph.New()
		na := g.AddAtom("Na", 0, 0)
		assert.False(t, calc.IsRadical(g, na))
	})
}

func TestIsValenceSatisfied(t *testing.T) {
	calc := newCalc()

	t.Run("within_standard", func(t *testing.T) {
		g := graph.New()
		c := g.AddAtom("C", 0, 0)
		o := g.AddAtom("O", 1, 0)
		g.AddBond(c, o, 2)
		assert.True(t, calc.IsValenceSatisfied(g, c))
		assert.True(t, calc.IsValenceSatisfied(g, o))
	})

	t.Run("hypervalent_sulfur_accepted", func(t *testing.T) {
		g := graph.New()
		s := g.AddAtom("S", 0, 0)
		for i := 0; i < 2; i++ {
			o := g.AddAtom("O", float64(i+1), 0)
			g.AddBond(s, o, 2)
		}
		for i := 0; i < 2; i++ {
			o := g.AddAtom("O", float64(i+3), 0)
			g.AddBond(s, o, 1)
		}
		// Sulfate-like sulfur: bond-order sum 6, allowed by the expanded octet.
		assert.True(t, calc.IsValenceSatisfied(g, s))
	})

	t.Run("pentavalent_carbon_rejected", func(t *testing.T) {
		g := graph.New()
		c := g.AddAtom("C", 0, 0)
		for i := 0; i < 5; i++ {
			h := g.AddAtom("H", float64(i+1), 0)
			g.AddBond(c, h, 1)
		}
		assert.False(t, calc.IsValenceSatisfied(g, c))
	})

	t.Run("fluorine_never_expands", func(t *testing.T) {
		g := graph.New()
		f := g.AddAtom("F", 0, 0)
		c1 := g.AddAtom("C", 1, 0)
		c2 := g.AddAtom("C", 2, 0)
		g.AddBond(f, c1, 1)
		g.AddBond(f, c2, 1)
		assert.False(t, calc.IsValenceSatisfied(g, f))
	})
}

func TestAnnotate(t *testing.T) {
	calc := newCalc()
	g := graph.New()
	c1 := g.AddAtom("C", 0, 0)
	c2 := g.AddAtom("C", 1, 0)
	o := g.AddAtom("O", 2, 0)
	g.AddBond(c1, c2, 1)
	g.AddBond(c2, o, 1)

	anns := calc.Annotate(g)
	require.Len(t, anns, 3)

	byID := map[chem.AtomID]chem.AtomAnnotation{}
	for _, a := range anns {
		byID[a.AtomID] = a
	}
	assert.Equal(t, 3, byID[c1].ImplicitH)
	assert.Equal(t, 2, byID[c2].ImplicitH)
	assert.Equal(t, 1, byID[o].ImplicitH)
	assert.Equal(t, 2, byID[o].LonePairs)
	for _, a := range anns {
		assert.True(t, a.ValenceOK)
	}

	// Radical parity counts drawn hydrogens only: the terminal C has 3
	// electrons left and O has 5, both odd; the inner C is even.
	assert.True(t, byID[c1].Radical)
	assert.False(t, byID[c2].Radical)
	assert.True(t, byID[o].Radical)
}

func TestUnknownElementWarnsOnce(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	calc := NewDefaultCalculator(logging.NewLoggerFromCore(core))

	g := graph.New()
	fe := g.AddAtom("Fe", 0, 0)
	assert.Equal(t, 0, calc.ImplicitHydrogens(g, fe))

	entries := observed.FilterMessage("unknown element treated as inert").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Fe", entries[0].ContextMap()["element"])
}
