// Package chem defines the boundary data types shared by the reaction engine
// and its external collaborators (editor canvases, template libraries,
// clipboard JSON, persisted files, compound-database imports).  Only plain
// data and validation live here; all chemistry logic belongs to the domain
// packages under internal/domain.
package chem

import (
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Identifiers
// ─────────────────────────────────────────────────────────────────────────────

// AtomID identifies an atom within a single molecular graph.  IDs are assigned
// by the owning graph from a monotonically increasing counter and stay stable
// for the graph's lifetime; they are only ever weak references outside it.
type AtomID int

// BondID identifies a bond within a single molecular graph.
type BondID int

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// Stereo is an optional stereochemistry descriptor on an atom or bond.
type Stereo string

const (
	StereoNone Stereo = ""
	StereoR    Stereo = "R"
	StereoS    Stereo = "S"
	StereoE    Stereo = "E"
	StereoZ    Stereo = "Z"
)

// BondKind classifies a bond.  Covalent is the default and the only kind the
// current rule base reasons about.
type BondKind string

const (
	BondCovalent BondKind = "covalent"
	BondIonic    BondKind = "ionic"
)

// Hybridization is the sp/sp2/sp3 classification of an atom's bonding
// geometry, inferred from bond-order multiplicities.
type Hybridization string

const (
	SP  Hybridization = "sp"
	SP2 Hybridization = "sp2"
	SP3 Hybridization = "sp3"
)

// FunctionalGroupTag names a recognizable substructure that drives reactivity
// classification.  Checks are independent and may overlap: a carboxylic acid
// carbon is also reported as a carbonyl.
type FunctionalGroupTag string

const (
	GroupAlcohol        FunctionalGroupTag = "alcohol"
	GroupPrimaryAmine   FunctionalGroupTag = "primary_amine"
	GroupSecondaryAmine FunctionalGroupTag = "secondary_amine"
	GroupTertiaryAmine  FunctionalGroupTag = "tertiary_amine"
	GroupCarbonyl       FunctionalGroupTag = "carbonyl"
	GroupAldehyde       FunctionalGroupTag = "aldehyde"
	GroupKetone         FunctionalGroupTag = "ketone"
	GroupCarboxylicAcid FunctionalGroupTag = "carboxylic_acid"
	GroupEster          FunctionalGroupTag = "ester"
	GroupAlkene         FunctionalGroupTag = "alkene"
	GroupAlkyne         FunctionalGroupTag = "alkyne"
	GroupHaloalkane     FunctionalGroupTag = "haloalkane"
)

// ─────────────────────────────────────────────────────────────────────────────
// Molecule document: the plain atom/bond list shape used at the boundaries
// ─────────────────────────────────────────────────────────────────────────────

// AtomSpec is the wire representation of a single atom.  Charge and radical
// electrons are stored; hybridization, implicit hydrogens, and lone pairs are
// derived and never persisted.
type AtomSpec struct {
	ID      AtomID  `json:"id"`
	Element string  `json:"element"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Charge  int     `json:"charge,omitempty"`
	Radical int     `json:"radical,omitempty"`
	Isotope int     `json:"isotope,omitempty"`
	Stereo  Stereo  `json:"stereo,omitempty"`
}

// BondSpec is the wire representation of a single bond.  Order must already be
// normalized into {1,2,3} before a document enters the core (aromatic order 4
// is mapped by the import layer, see NormalizeBondOrder).
type BondSpec struct {
	ID     BondID   `json:"id"`
	Atom1  AtomID   `json:"atom1"`
	Atom2  AtomID   `json:"atom2"`
	Order  int      `json:"order"`
	Stereo Stereo   `json:"stereo,omitempty"`
	Kind   BondKind `json:"kind,omitempty"`
}

// MoleculeDocument is the serialized form of a molecular graph.  The same
// shape is used for template libraries, clipboard JSON, persisted files, and
// compound-database imports; it has no other required fields.
type MoleculeDocument struct {
	Name  string     `json:"name,omitempty"`
	Atoms []AtomSpec `json:"atoms"`
	Bonds []BondSpec `json:"bonds"`
}

// Validate checks the structural integrity of the document: unique atom ids,
// bonds referencing existing atoms, and no self-bonds.  It does not check
// chemistry (valence violations are advisory, not structural).
func (d MoleculeDocument) Validate() error {
	seen := make(map[AtomID]bool, len(d.Atoms))
	for _, a := range d.Atoms {
		if a.Element == "" {
			return fmt.Errorf("atom %d has empty element symbol", a.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate atom id %d", a.ID)
		}
		seen[a.ID] = true
	}
	for _, b := range d.Bonds {
		if b.Atom1 == b.Atom2 {
			return fmt.Errorf("bond %d connects atom %d to itself", b.ID, b.Atom1)
		}
		if !seen[b.Atom1] || !seen[b.Atom2] {
			return fmt.Errorf("bond %d references a nonexistent atom", b.ID)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Engine results
// ─────────────────────────────────────────────────────────────────────────────

// AtomAnnotation carries the derived per-atom properties handed to rendering
// layers.  All fields are recomputed on demand from the element and incident
// bonds; none are authoritative state.
type AtomAnnotation struct {
	AtomID        AtomID        `json:"atom_id"`
	ImplicitH     int           `json:"implicit_h"`
	FormalCharge  float64       `json:"formal_charge"`
	LonePairs     int           `json:"lone_pairs"`
	Radical       bool          `json:"radical"`
	Hybridization Hybridization `json:"hybridization"`
	ValenceOK     bool          `json:"valence_ok"`
}

// FunctionalGroupMatch is one detected substructure: a tag plus the atom ids
// that participate.  Matches are transient, recomputed per query, and never
// persisted.
type FunctionalGroupMatch struct {
	Tag     FunctionalGroupTag `json:"tag"`
	AtomIDs []AtomID           `json:"atom_ids"`
}

// ReactionRequest names the reagents and conditions of a candidate reaction.
// Category may be pre-resolved by the caller; when empty the validator
// classifies from reagents and conditions.
type ReactionRequest struct {
	Reagents   []string `json:"reagents"`
	Conditions []string `json:"conditions,omitempty"`
	Category   string   `json:"category,omitempty"`
}

// ReactionVerdict is the outcome of one validation call.  It is produced
// fresh per call and must be treated as immutable once returned.  Score is
// advisory confidence in [0,100], not a probability.
type ReactionVerdict struct {
	Valid       bool     `json:"valid"`
	Category    string   `json:"category"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Score       int      `json:"score"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Import normalization (external compound-database collaborator)
// ─────────────────────────────────────────────────────────────────────────────

// elementSymbols maps atomic numbers to element symbols for the subset of the
// periodic table the import collaborator can deliver.  Unknown numbers map to
// "C" so malformed imports degrade to a drawable structure instead of failing.
var elementSymbols = map[int]string{
	1: "H", 2: "He", 3: "Li", 4: "Be", 5: "B", 6: "C", 7: "N", 8: "O",
	9: "F", 10: "Ne", 11: "Na", 12: "Mg", 13: "Al", 14: "Si", 15: "P",
	16: "S", 17: "Cl", 18: "Ar", 19: "K", 20: "Ca", 26: "Fe", 29: "Cu",
	30: "Zn", 35: "Br", 47: "Ag", 53: "I", 54: "Xe", 79: "Au", 80: "Hg",
}

// SymbolForAtomicNumber converts an atomic number to an element symbol.
// Unrecognized numbers fall back to carbon; the boolean reports whether the
// number was known.
func SymbolForAtomicNumber(z int) (string, bool) {
	if sym, ok := elementSymbols[z]; ok {
		return sym, true
	}
	return "C", false
}

// NormalizeBondOrder maps external bond orders into the core's {1,2,3} range.
// Aromatic order 4 is treated as a single bond; anything else out of range
// clamps.  The core never sees other values.
func NormalizeBondOrder(order int) int {
	switch {
	case order == 4:
		return 1
	case order < 1:
		return 1
	case order > 3:
		return 3
	default:
		return order
	}
}

// Halogens is the fixed halogen set shared by group detection and rewrite
// rules.
var Halogens = map[string]bool{"F": true, "Cl": true, "Br": true, "I": true}

// IsHalogen reports whether the element symbol is F, Cl, Br, or I.
func IsHalogen(element string) bool {
	return Halogens[element]
}
