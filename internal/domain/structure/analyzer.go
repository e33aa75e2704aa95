// Package structure detects structural motifs on a molecular graph: rings,
// hybridization, aromaticity, conjugated systems, and tetrahedral chirality.
package structure

import (
	"sort"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// maxRingSize bounds the depth-first ring search; cycles longer than this are
// not chemically interesting to the rule base and would blow up the search.
const maxRingSize = 8

// minRingSize is the smallest reportable cycle.
const minRingSize = 3

// Analyzer computes structural motifs.  It holds no per-molecule state and is
// safe for concurrent use against independent graphs.
type Analyzer struct {
	log logging.Logger
}

// NewAnalyzer constructs an Analyzer.  A nil logger degrades to the nop
// implementation.
func NewAnalyzer(log logging.Logger) *Analyzer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Analyzer{log: log.Named("structure")}
}

// Hybridization classifies an atom by its incident bond orders: any triple
// bond means sp, otherwise any double bond means sp2, otherwise sp3.  Triple
// takes absolute priority over double even when both are present.
func (an *Analyzer) Hybridization(g *graph.Graph, id chem.AtomID) chem.Hybridization {
	hasDouble := false
	for _, b := range g.BondsOf(id) {
		switch {
		case b.Order >= 3:
			return chem.SP
		case b.Order == 2:
			hasDouble = true
		}
	}
	if hasDouble {
		return chem.SP2
	}
	return chem.SP3
}

// Ring is one detected cycle: the member atom ids in traversal order.
type Ring []chem.AtomID

// Contains reports whether the ring includes the atom.
func (r Ring) Contains(id chem.AtomID) bool {
	for _, a := range r {
		if a == id {
			return true
		}
	}
	return false
}

// FindRings runs a bounded depth-first search from every atom and reports a
// ring whenever the walk returns to its start atom with a path of 3 to 8
// atoms.  Duplicate discoveries of the same atom set are collapsed.  This is
// deliberately not a minimal-cycle-basis algorithm: fused and bridged
// polycyclics may be under- or over-reported, and downstream aromaticity
// heuristics are tuned to this method's output shape.
func (an *Analyzer) FindRings(g *graph.Graph) []Ring {
	type edge struct {
		to   chem.AtomID
		bond chem.BondID
	}
	adjacency := make(map[chem.AtomID][]edge)
	for _, b := range g.Bonds() {
		adjacency[b.Atom1] = append(adjacency[b.Atom1], edge{to: b.Atom2, bond: b.ID})
		adjacency[b.Atom2] = append(adjacency[b.Atom2], edge{to: b.Atom1, bond: b.ID})
	}

	seen := make(map[string]bool)
	var rings []Ring

	var dfs func(start, current chem.AtomID, path []chem.AtomID, usedBonds map[chem.BondID]bool)
	dfs = func(start, current chem.AtomID, path []chem.AtomID, usedBonds map[chem.BondID]bool) {
		for _, e := range adjacency[current] {
			if usedBonds[e.bond] {
				continue
			}
			if e.to == start && len(path) >= minRingSize {
				key := canonicalRingKey(path)
				if !seen[key] {
					seen[key] = true
					ring := make(Ring, len(path))
					copy(ring, path)
					rings = append(rings, ring)
				}
				continue
			}
			if onPath(path, e.to) {
				continue
			}
			if len(path) >= maxRingSize {
				continue
			}
			nextUsed := make(map[chem.BondID]bool, len(usedBonds)+1)
			for k := range usedBonds {
				nextUsed[k] = true
			}
			nextUsed[e.bond] = true
			dfs(start, e.to, append(path, e.to), nextUsed)
		}
	}

	for _, a := range g.Atoms() {
		dfs(a.ID, a.ID, []chem.AtomID{a.ID}, map[chem.BondID]bool{})
	}
	return rings
}

func onPath(path []chem.AtomID, id chem.AtomID) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}

// canonicalRingKey builds an order-independent identity for a cycle's atom
// set, so the same ring discovered from different start atoms collapses to
// one entry.
func canonicalRingKey(path []chem.AtomID) string {
	ids := make([]int, len(path))
	for i, id := range path {
		ids[i] = int(id)
	}
	sort.Ints(ids)
	key := make([]byte, 0, len(ids)*3)
	for _, id := range ids {
		key = appendInt(key, id)
		key = append(key, ',')
	}
	return string(key)
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return append(b, digits[i:]...)
}

// IsAromatic applies Hückel's rule to a detected ring.  Every ring atom must
// be sp or sp2 (the planarity proxy); the π-electron count is 1 per atom
// bearing a double bond (in-ring or exocyclic) plus 2 per nitrogen or oxygen
// ring atom with no double bond (lone-pair donation).  Aromatic iff the total
// is 4n+2 for integer n ≥ 0.
func (an *Analyzer) IsAromatic(g *graph.Graph, ring Ring) bool {
	if len(ring) < minRingSize {
		return false
	}
	pi := 0
	for _, id := range ring {
		atom, ok := g.Atom(id)
		if !ok {
			return false
		}
		hasDouble := false
		for _, b := range g.BondsOf(id) {
			if b.Order == 2 {
				hasDouble = true
				break
			}
		}
		donor := !hasDouble && (atom.Element == "N" || atom.Element == "O")

		// Planarity proxy: every ring atom must be sp or sp2.  A lone-pair
		// donor rehybridizes into the ring plane, so it is exempt even though
		// its bond orders alone would classify it sp3.
		if hyb := an.Hybridization(g, id); hyb != chem.SP && hyb != chem.SP2 && !donor {
			return false
		}

		switch {
		case hasDouble:
			pi++
		case donor:
			pi += 2
		}
	}
	return pi >= 2 && (pi-2)%4 == 0
}

// AromaticRings returns the subset of FindRings that IsAromatic accepts.
func (an *Analyzer) AromaticRings(g *graph.Graph) []Ring {
	var out []Ring
	for _, r := range an.FindRings(g) {
		if an.IsAromatic(g, r) {
			out = append(out, r)
		}
	}
	return out
}

// IsAtomAromatic reports whether the atom belongs to any aromatic ring.
func (an *Analyzer) IsAtomAromatic(g *graph.Graph, id chem.AtomID) bool {
	for _, r := range an.AromaticRings(g) {
		if r.Contains(id) {
			return true
		}
	}
	return false
}

// TraceConjugatedSystem expands breadth-first from the start atom, crossing
// only between sp/sp2 atoms, and returns the connected set, or nil if the
// start atom is sp3 or the system spans fewer than 3 atoms.
func (an *Analyzer) TraceConjugatedSystem(g *graph.Graph, start chem.AtomID) map[chem.AtomID]bool {
	if _, ok := g.Atom(start); !ok {
		return nil
	}
	if h := an.Hybridization(g, start); h != chem.SP && h != chem.SP2 {
		return nil
	}

	system := map[chem.AtomID]bool{start: true}
	queue := []chem.AtomID{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(current) {
			if system[nb] {
				continue
			}
			if h := an.Hybridization(g, nb); h != chem.SP && h != chem.SP2 {
				continue
			}
			system[nb] = true
			queue = append(queue, nb)
		}
	}
	if len(system) < 3 {
		return nil
	}
	return system
}

// IsChiralCenter reports tetrahedral chirality by a substituent-distinctness
// proxy: the atom must be sp3, carry exactly 4 bonds, and its 4 immediate
// neighbors must be pairwise distinct elements.  This is deliberately not a
// CIP comparison; a rigorous implementation would be a separate strategy
// behind the same signature.
func (an *Analyzer) IsChiralCenter(g *graph.Graph, id chem.AtomID) bool {
	if an.Hybridization(g, id) != chem.SP3 {
		return false
	}
	neighbors := g.Neighbors(id)
	if len(neighbors) != 4 {
		return false
	}
	elements := make(map[string]bool, 4)
	for _, nb := range neighbors {
		atom, ok := g.Atom(nb)
		if !ok {
			return false
		}
		if elements[atom.Element] {
			return false
		}
		elements[atom.Element] = true
	}
	return true
}

// ChiralCenters returns the ids of every chiral center in the graph, in atom
// insertion order.
func (an *Analyzer) ChiralCenters(g *graph.Graph) []chem.AtomID {
	var out []chem.AtomID
	for _, a := range g.Atoms() {
		if an.IsChiralCenter(g, a.ID) {
			out = append(out, a.ID)
		}
	}
	return out
}
