// Package valence derives per-atom electronic properties (implicit
// hydrogens, formal charge, lone pairs, radical state, octet satisfaction)
// from an element symbol and the orders of its incident bonds.  Nothing here
// is stored: every value is recomputed from the graph on each call so the
// derived chemistry can never drift from the topology.
package valence

import (
	"math"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// Calculator computes electronic properties against injected element tables.
// It is stateless apart from the tables and safe for concurrent use.
type Calculator struct {
	tables Tables
	log    logging.Logger
}

// NewCalculator constructs a Calculator.  A nil logger degrades to the nop
// implementation.
func NewCalculator(tables Tables, log logging.Logger) *Calculator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Calculator{tables: tables, log: log.Named("valence")}
}

// NewDefaultCalculator constructs a Calculator over DefaultTables.
func NewDefaultCalculator(log logging.Logger) *Calculator {
	return NewCalculator(DefaultTables(), log)
}

// TotalBondOrder sums the orders of every bond incident on the atom.  Orders
// outside {1,2,3} are repaired to the nearest legal value and the repair is
// logged; the stored bond is left untouched.
func (c *Calculator) TotalBondOrder(g *graph.Graph, id chem.AtomID) int {
	total := 0
	for _, b := range g.BondsOf(id) {
		order := b.Order
		if order < 1 || order > 3 {
			repaired := chem.NormalizeBondOrder(order)
			c.log.Warn("bond order repaired",
				logging.Int("bond_id", int(b.ID)),
				logging.Int("order", order),
				logging.Int("repaired", repaired))
			order = repaired
		}
		total += order
	}
	return total
}

// ExplicitHydrogens counts the hydrogen atoms drawn as explicit neighbors.
func (c *Calculator) ExplicitHydrogens(g *graph.Graph, id chem.AtomID) int {
	n := 0
	for _, nbID := range g.Neighbors(id) {
		if nb, ok := g.Atom(nbID); ok && nb.Element == "H" {
			n++
		}
	}
	return n
}

// ImplicitHydrogens returns the number of hydrogens assumed but not drawn:
// the standard valence minus the bond-order sum minus the formal charge,
// floored at zero.  Elements absent from the standard table get zero implicit
// hydrogens and a warning (treated as inert).
func (c *Calculator) ImplicitHydrogens(g *graph.Graph, id chem.AtomID) int {
	atom, ok := g.Atom(id)
	if !ok {
		return 0
	}
	std, known := c.tables.Standard[atom.Element]
	if !known {
		c.log.Warn("unknown element treated as inert",
			logging.Int("atom_id", int(id)),
			logging.String("element", atom.Element))
		return 0
	}
	ih := std - c.TotalBondOrder(g, id) - atom.Charge
	if ih < 0 {
		return 0
	}
	return ih
}

// FormalCharge computes V - (N + B/2): valence electrons minus nonbonding
// electrons minus half the bonding electrons, rounded to two decimals.
// Elements without a valence electron entry report zero.
func (c *Calculator) FormalCharge(g *graph.Graph, id chem.AtomID) float64 {
	atom, ok := g.Atom(id)
	if !ok {
		return 0
	}
	v, known := c.tables.Electrons[atom.Element]
	if !known {
		return 0
	}
	total := c.TotalBondOrder(g, id)
	// The electron count is deliberately unclamped here: an over-bonded atom
	// has negative pairs left, and the charge must reflect that deficit.
	nonbonding := 2 * floorHalf(v-atom.Charge-total)
	bonding := 2 * total
	fc := float64(v) - (float64(nonbonding) + float64(bonding)/2)
	return math.Round(fc*100) / 100
}

// floorHalf is floor division by two, which Go's truncating division gets
// wrong for negative odd values.
func floorHalf(n int) int {
	if n < 0 && n%2 != 0 {
		return n/2 - 1
	}
	return n / 2
}

// LonePairs returns the number of nonbonding electron pairs on the atom,
// floored at zero.
func (c *Calculator) LonePairs(g *graph.Graph, id chem.AtomID) int {
	atom, ok := g.Atom(id)
	if !ok {
		return 0
	}
	v, known := c.tables.Electrons[atom.Element]
	if !known {
		return 0
	}
	return c.lonePairs(v, atom.Charge, c.TotalBondOrder(g, id))
}

func (c *Calculator) lonePairs(valenceElectrons, charge, totalOrder int) int {
	lp := (valenceElectrons - charge - totalOrder) / 2
	if lp < 0 {
		return 0
	}
	return lp
}

// IsRadical reports whether the atom carries an unpaired electron: the parity
// of the electrons left after charge, bonding, and explicit hydrogens are
// accounted for.  Only radical-capable elements ever report true; everything
// else (metals, unknown symbols) is skipped.
func (c *Calculator) IsRadical(g *graph.Graph, id chem.AtomID) bool {
	atom, ok := g.Atom(id)
	if !ok || !c.tables.RadicalCapable[atom.Element] {
		return false
	}
	v, known := c.tables.Electrons[atom.Element]
	if !known {
		return false
	}
	unpaired := v - atom.Charge - c.TotalBondOrder(g, id) - c.ExplicitHydrogens(g, id)
	return ((unpaired%2)+2)%2 == 1
}

// IsValenceSatisfied reports whether the atom's bond-order sum is within its
// allowed capacity: the standard valence, or the expanded-octet maximum for
// elements that hypervalence (P, S, the heavier halogens, Xe; never F).
// Unknown elements are accepted; the engine has no basis to reject them.
func (c *Calculator) IsValenceSatisfied(g *graph.Graph, id chem.AtomID) bool {
	atom, ok := g.Atom(id)
	if !ok {
		return false
	}
	total := c.TotalBondOrder(g, id)
	std, known := c.tables.Standard[atom.Element]
	if !known {
		return true
	}
	if total <= std {
		return true
	}
	if max, expandable := c.tables.Expanded[atom.Element]; expandable && total <= max {
		return true
	}
	return false
}

// Annotate derives the full per-atom property set for every atom in the
// graph, in insertion order.  Hybridization is a structural property and is
// left for the structure analyzer to fill in.
func (c *Calculator) Annotate(g *graph.Graph) []chem.AtomAnnotation {
	atoms := g.Atoms()
	out := make([]chem.AtomAnnotation, 0, len(atoms))
	for _, a := range atoms {
		out = append(out, chem.AtomAnnotation{
			AtomID:       a.ID,
			ImplicitH:    c.ImplicitHydrogens(g, a.ID),
			FormalCharge: c.FormalCharge(g, a.ID),
			LonePairs:    c.LonePairs(g, a.ID),
			Radical:      c.IsRadical(g, a.ID),
			ValenceOK:    c.IsValenceSatisfied(g, a.ID),
		})
	}
	return out
}
