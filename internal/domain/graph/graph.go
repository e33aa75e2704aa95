// Package graph provides the molecular graph data model: an owned collection
// of atoms and bonds that every other engine component reads and, through the
// graph's own primitives, mutates.  The graph exclusively owns its atoms and
// bonds; external components only ever hold AtomID/BondID values as weak
// references.
package graph

import (
	"math"

	"github.com/google/uuid"

	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// Atom is a single atom owned by a Graph.  Derived valence properties
// (hybridization, implicit hydrogens, lone pairs) are never stored here; they
// are recomputed on demand from the element and the incident bonds, so no
// derived field can silently diverge from the bond graph.
type Atom struct {
	ID      chem.AtomID
	Element string
	X, Y    float64
	Charge  int
	Radical int
	Isotope int
	Stereo  chem.Stereo
}

// Bond is a single bond owned by a Graph.  The atom pair is unordered and
// unique: at most one bond exists between any two atoms.
type Bond struct {
	ID     chem.BondID
	Atom1  chem.AtomID
	Atom2  chem.AtomID
	Order  int
	Stereo chem.Stereo
	Kind   chem.BondKind
}

// Other returns the endpoint that is not atomID, and false when atomID is not
// an endpoint of this bond.
func (b Bond) Other(atomID chem.AtomID) (chem.AtomID, bool) {
	switch atomID {
	case b.Atom1:
		return b.Atom2, true
	case b.Atom2:
		return b.Atom1, true
	}
	return 0, false
}

// Graph is a mutable molecular graph with monotonically increasing id
// counters.  It is not internally synchronized: concurrent use of independent
// graphs is safe, concurrent mutation of one graph is not; callers must
// serialize writes (single-writer discipline).
type Graph struct {
	id         string
	atoms      []*Atom // insertion order
	bonds      []*Bond // insertion order
	atomIndex  map[chem.AtomID]int
	bondIndex  map[chem.BondID]int
	nextAtomID chem.AtomID
	nextBondID chem.BondID
}

// AtomOption mutates a freshly added atom before it is returned to the caller.
type AtomOption func(*Atom)

// WithCharge sets the formal charge of a new atom.
func WithCharge(charge int) AtomOption { return func(a *Atom) { a.Charge = charge } }

// WithRadical sets the radical electron count of a new atom.
func WithRadical(electrons int) AtomOption { return func(a *Atom) { a.Radical = electrons } }

// WithIsotope sets the isotope mass label of a new atom.
func WithIsotope(mass int) AtomOption { return func(a *Atom) { a.Isotope = mass } }

// WithStereo sets the stereo descriptor of a new atom.
func WithStereo(s chem.Stereo) AtomOption { return func(a *Atom) { a.Stereo = s } }

// New creates an empty molecular graph.
func New() *Graph {
	return &Graph{
		id:         uuid.New().String(),
		atomIndex:  make(map[chem.AtomID]int),
		bondIndex:  make(map[chem.BondID]int),
		nextAtomID: 1,
		nextBondID: 1,
	}
}

// FromDocument builds a graph from the plain atom/bond list shape used by
// template libraries, clipboard JSON, and persisted files.  Atom and bond ids
// from the document are preserved; the graph's counters resume above the
// highest seen id.  Bond orders outside {1,2,3} are repaired to the nearest
// legal value per the degradation policy; structural defects (duplicate ids,
// dangling or self bonds) are rejected.
func FromDocument(doc chem.MoleculeDocument) (*Graph, error) {
	if err := doc.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphInvalidDocument, "molecule document rejected")
	}

	g := New()
	for _, spec := range doc.Atoms {
		g.atomIndex[spec.ID] = len(g.atoms)
		g.atoms = append(g.atoms, &Atom{
			ID:      spec.ID,
			Element: spec.Element,
			X:       spec.X,
			Y:       spec.Y,
			Charge:  spec.Charge,
			Radical: spec.Radical,
			Isotope: spec.Isotope,
			Stereo:  spec.Stereo,
		})
		if spec.ID >= g.nextAtomID {
			g.nextAtomID = spec.ID + 1
		}
	}
	for _, spec := range doc.Bonds {
		kind := spec.Kind
		if kind == "" {
			kind = chem.BondCovalent
		}
		g.bondIndex[spec.ID] = len(g.bonds)
		g.bonds = append(g.bonds, &Bond{
			ID:     spec.ID,
			Atom1:  spec.Atom1,
			Atom2:  spec.Atom2,
			Order:  chem.NormalizeBondOrder(spec.Order),
			Stereo: spec.Stereo,
			Kind:   kind,
		})
		if spec.ID >= g.nextBondID {
			g.nextBondID = spec.ID + 1
		}
	}
	return g, nil
}

// ID returns the graph's session-unique identifier.
func (g *Graph) ID() string { return g.id }

// AtomCount returns the number of atoms in the graph.
func (g *Graph) AtomCount() int { return len(g.atoms) }

// BondCount returns the number of bonds in the graph.
func (g *Graph) BondCount() int { return len(g.bonds) }

// ─────────────────────────────────────────────────────────────────────────────
// Mutation primitives: the only ways graph topology changes
// ─────────────────────────────────────────────────────────────────────────────

// AddAtom appends a new atom and returns its id.
func (g *Graph) AddAtom(element string, x, y float64, opts ...AtomOption) chem.AtomID {
	a := &Atom{
		ID:      g.nextAtomID,
		Element: element,
		X:       x,
		Y:       y,
	}
	g.nextAtomID++
	for _, opt := range opts {
		opt(a)
	}
	g.atomIndex[a.ID] = len(g.atoms)
	g.atoms = append(g.atoms, a)
	return a.ID
}

// RemoveAtom removes an atom and cascades to every bond referencing it, so no
// dangling bond can survive.
func (g *Graph) RemoveAtom(id chem.AtomID) error {
	idx, ok := g.atomIndex[id]
	if !ok {
		return errors.Newf(errors.ErrCodeGraphAtomNotFound, "atom %d not found", id)
	}

	// Cascade: drop incident bonds first.
	kept := g.bonds[:0]
	for _, b := range g.bonds {
		if b.Atom1 == id || b.Atom2 == id {
			delete(g.bondIndex, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	g.bonds = kept
	g.reindexBonds()

	g.atoms = append(g.atoms[:idx], g.atoms[idx+1:]...)
	delete(g.atomIndex, id)
	g.reindexAtoms()
	return nil
}

// AddBond connects two atoms with the given order.  If a bond between the
// pair already exists the call updates its order instead of creating a
// duplicate (idempotent re-bonding) and returns the existing bond's id.
// Orders outside {1,2,3} are clamped.
func (g *Graph) AddBond(a, b chem.AtomID, order int) (chem.BondID, error) {
	if a == b {
		return 0, errors.Newf(errors.ErrCodeGraphSelfBond, "atom %d cannot bond to itself", a)
	}
	if _, ok := g.atomIndex[a]; !ok {
		return 0, errors.Newf(errors.ErrCodeGraphAtomNotFound, "atom %d not found", a)
	}
	if _, ok := g.atomIndex[b]; !ok {
		return 0, errors.Newf(errors.ErrCodeGraphAtomNotFound, "atom %d not found", b)
	}

	order = clampOrder(order)

	if existing := g.findBond(a, b); existing != nil {
		existing.Order = order
		return existing.ID, nil
	}

	bond := &Bond{
		ID:    g.nextBondID,
		Atom1: a,
		Atom2: b,
		Order: order,
		Kind:  chem.BondCovalent,
	}
	g.nextBondID++
	g.bondIndex[bond.ID] = len(g.bonds)
	g.bonds = append(g.bonds, bond)
	return bond.ID, nil
}

// RemoveBond removes a single bond by id.
func (g *Graph) RemoveBond(id chem.BondID) error {
	idx, ok := g.bondIndex[id]
	if !ok {
		return errors.Newf(errors.ErrCodeGraphBondNotFound, "bond %d not found", id)
	}
	g.bonds = append(g.bonds[:idx], g.bonds[idx+1:]...)
	delete(g.bondIndex, id)
	g.reindexBonds()
	return nil
}

// SetCharge updates an atom's formal charge.
func (g *Graph) SetCharge(id chem.AtomID, charge int) error {
	a, ok := g.atomPtr(id)
	if !ok {
		return errors.Newf(errors.ErrCodeGraphAtomNotFound, "atom %d not found", id)
	}
	a.Charge = charge
	return nil
}

// SetPosition moves an atom.  Positions feed geometric heuristics and
// rendering only, never chemistry.
func (g *Graph) SetPosition(id chem.AtomID, x, y float64) error {
	a, ok := g.atomPtr(id)
	if !ok {
		return errors.Newf(errors.ErrCodeGraphAtomNotFound, "atom %d not found", id)
	}
	a.X, a.Y = x, y
	return nil
}

// SetStereo updates an atom's stereo descriptor.
func (g *Graph) SetStereo(id chem.AtomID, s chem.Stereo) error {
	a, ok := g.atomPtr(id)
	if !ok {
		return errors.Newf(errors.ErrCodeGraphAtomNotFound, "atom %d not found", id)
	}
	a.Stereo = s
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// Atom returns a copy of the atom with the given id.
func (g *Graph) Atom(id chem.AtomID) (Atom, bool) {
	a, ok := g.atomPtr(id)
	if !ok {
		return Atom{}, false
	}
	return *a, true
}

// Bond returns a copy of the bond with the given id.
func (g *Graph) Bond(id chem.BondID) (Bond, bool) {
	idx, ok := g.bondIndex[id]
	if !ok {
		return Bond{}, false
	}
	return *g.bonds[idx], true
}

// Atoms returns copies of all atoms in insertion order.
func (g *Graph) Atoms() []Atom {
	out := make([]Atom, len(g.atoms))
	for i, a := range g.atoms {
		out[i] = *a
	}
	return out
}

// Bonds returns copies of all bonds in insertion order.
func (g *Graph) Bonds() []Bond {
	out := make([]Bond, len(g.bonds))
	for i, b := range g.bonds {
		out[i] = *b
	}
	return out
}

// BondsOf returns the bonds incident on an atom in insertion order, not
// geometric order; components that need angular order sort explicitly.
func (g *Graph) BondsOf(id chem.AtomID) []Bond {
	var out []Bond
	for _, b := range g.bonds {
		if b.Atom1 == id || b.Atom2 == id {
			out = append(out, *b)
		}
	}
	return out
}

// Neighbor returns the endpoint of bond that is not atomID.
func (g *Graph) Neighbor(atomID chem.AtomID, bond Bond) (chem.AtomID, bool) {
	return bond.Other(atomID)
}

// Neighbors returns the ids of all atoms bonded to the given atom, in bond
// insertion order.
func (g *Graph) Neighbors(id chem.AtomID) []chem.AtomID {
	var out []chem.AtomID
	for _, b := range g.bonds {
		if other, ok := b.Other(id); ok {
			out = append(out, other)
		}
	}
	return out
}

// BondBetween returns the bond connecting the unordered pair (a, b), if any.
func (g *Graph) BondBetween(a, b chem.AtomID) (Bond, bool) {
	if bond := g.findBond(a, b); bond != nil {
		return *bond, true
	}
	return Bond{}, false
}

// Degree returns the number of bonds incident on an atom (not the bond-order
// sum).
func (g *Graph) Degree(id chem.AtomID) int {
	n := 0
	for _, b := range g.bonds {
		if b.Atom1 == id || b.Atom2 == id {
			n++
		}
	}
	return n
}

// TotalCharge returns the sum of formal charges over all atoms, used by the
// charge-balance advisory.
func (g *Graph) TotalCharge() int {
	total := 0
	for _, a := range g.atoms {
		total += a.Charge
	}
	return total
}

// ─────────────────────────────────────────────────────────────────────────────
// Cloning and serialization
// ─────────────────────────────────────────────────────────────────────────────

// Clone returns a deep copy with fresh atom and bond ids (renumbered from 1 in
// insertion order) and preserved element/charge/order data, plus the mapping
// from original atom ids to clone ids.  Transformations always run against a
// clone so the reactant graph is never mutated.
func (g *Graph) Clone() (*Graph, map[chem.AtomID]chem.AtomID) {
	clone := New()
	mapping := make(map[chem.AtomID]chem.AtomID, len(g.atoms))
	for _, a := range g.atoms {
		newID := clone.AddAtom(a.Element, a.X, a.Y,
			WithCharge(a.Charge), WithRadical(a.Radical), WithIsotope(a.Isotope), WithStereo(a.Stereo))
		mapping[a.ID] = newID
	}
	for _, b := range g.bonds {
		id, _ := clone.AddBond(mapping[b.Atom1], mapping[b.Atom2], b.Order)
		if idx, ok := clone.bondIndex[id]; ok {
			clone.bonds[idx].Stereo = b.Stereo
			clone.bonds[idx].Kind = b.Kind
		}
	}
	return clone, mapping
}

// ToDocument serializes the graph into the plain atom/bond list shape.
func (g *Graph) ToDocument() chem.MoleculeDocument {
	doc := chem.MoleculeDocument{
		Atoms: make([]chem.AtomSpec, 0, len(g.atoms)),
		Bonds: make([]chem.BondSpec, 0, len(g.bonds)),
	}
	for _, a := range g.atoms {
		doc.Atoms = append(doc.Atoms, chem.AtomSpec{
			ID:      a.ID,
			Element: a.Element,
			X:       a.X,
			Y:       a.Y,
			Charge:  a.Charge,
			Radical: a.Radical,
			Isotope: a.Isotope,
			Stereo:  a.Stereo,
		})
	}
	for _, b := range g.bonds {
		doc.Bonds = append(doc.Bonds, chem.BondSpec{
			ID:     b.ID,
			Atom1:  b.Atom1,
			Atom2:  b.Atom2,
			Order:  b.Order,
			Stereo: b.Stereo,
			Kind:   b.Kind,
		})
	}
	return doc
}

// Distance returns the Euclidean distance between two atoms' 2D positions.
// Geometry is a rendering concern; nothing chemical derives from it.
func (g *Graph) Distance(a, b chem.AtomID) float64 {
	pa, okA := g.atomPtr(a)
	pb, okB := g.atomPtr(b)
	if !okA || !okB {
		return 0
	}
	dx, dy := pa.X-pb.X, pa.Y-pb.Y
	return math.Hypot(dx, dy)
}

// ─────────────────────────────────────────────────────────────────────────────
// internals
// ─────────────────────────────────────────────────────────────────────────────

func (g *Graph) atomPtr(id chem.AtomID) (*Atom, bool) {
	idx, ok := g.atomIndex[id]
	if !ok {
		return nil, false
	}
	return g.atoms[idx], true
}

func (g *Graph) findBond(a, b chem.AtomID) *Bond {
	for _, bond := range g.bonds {
		if (bond.Atom1 == a && bond.Atom2 == b) || (bond.Atom1 == b && bond.Atom2 == a) {
			return bond
		}
	}
	return nil
}

func (g *Graph) reindexAtoms() {
	for i, a := range g.atoms {
		g.atomIndex[a.ID] = i
	}
}

func (g *Graph) reindexBonds() {
	for i, b := range g.bonds {
		g.bondIndex[b.ID] = i
	}
}

func clampOrder(order int) int {
	if order < 1 {
		return 1
	}
	if order > 3 {
		return 3
	}
	return order
}
