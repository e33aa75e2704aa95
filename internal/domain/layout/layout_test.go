package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
)

func TestRelax_PullsBondedAtomsTowardBondLength(t *testing.T) {
	g := graph.New()
	a := g.AddAtom("C", 0, 0)
	b := g.AddAtom("C", 5, 0)
	_, err := g.AddBond(a, b, 1)
	require.NoError(t, err)

	Relax(g, DefaultOptions())

	dist := g.Distance(a, b)
	assert.Less(t, math.Abs(dist-1.0), math.Abs(5.0-1.0), "distance moved toward target")
}

func TestRelax_SeparatesOverlappingAtoms(t *testing.T) {
	g := graph.New()
	a := g.AddAtom("C", 0, 0)
	b := g.AddAtom("O", 0, 0) // unbonded, coincident

	Relax(g, DefaultOptions())

	assert.Greater(t, g.Distance(a, b), 0.0)
}

func TestRelax_NeverTouchesTopology(t *testing.T) {
	g := graph.New()
	a := g.AddAtom("C", 0, 0, graph.WithCharge(-1))
	b := g.AddAtom("O", 3, 0)
	id, err := g.AddBond(a, b, 2)
	require.NoError(t, err)

	Relax(g, DefaultOptions())

	assert.Equal(t, 2, g.AtomCount())
	assert.Equal(t, 1, g.BondCount())
	bond, _ := g.Bond(id)
	assert.Equal(t, 2, bond.Order)
	atom, _ := g.Atom(a)
	assert.Equal(t, -1, atom.Charge)
}

func TestRelax_NoopCases(t *testing.T) {
	g := graph.New()
	a := g.AddAtom("C", 1.5, 2.5)

	Relax(g, DefaultOptions()) // single atom
	atom, _ := g.Atom(a)
	assert.Equal(t, 1.5, atom.X)
	assert.Equal(t, 2.5, atom.Y)

	g.AddAtom("O", 9, 9)
	Relax(g, Options{Iterations: 0}) // zero iterations
	atom, _ = g.Atom(a)
	assert.Equal(t, 1.5, atom.X)
}
