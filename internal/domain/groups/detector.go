// Package groups recognizes functional groups on a molecular graph.  Each
// check is an independent pattern over elements and bond orders; checks may
// overlap (a carboxylic acid carbon is also a carbonyl carbon) and callers
// must never assume mutual exclusivity.
package groups

import (
	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// Detector runs the fixed battery of functional-group checks.  It is
// stateless and safe for concurrent use against independent graphs.
type Detector struct {
	log logging.Logger
}

// NewDetector constructs a Detector.  A nil logger degrades to the nop
// implementation.
func NewDetector(log logging.Logger) *Detector {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Detector{log: log.Named("groups")}
}

// DetectAll runs every check and returns the combined matches in a fixed
// battery order, each match carrying the participating atom ids.
func (d *Detector) DetectAll(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	out = append(out, d.Alcohols(g)...)
	out = append(out, d.Amines(g)...)
	out = append(out, d.Carbonyls(g)...)
	out = append(out, d.Aldehydes(g)...)
	out = append(out, d.Ketones(g)...)
	out = append(out, d.CarboxylicAcids(g)...)
	out = append(out, d.Esters(g)...)
	out = append(out, d.Alkenes(g)...)
	out = append(out, d.Alkynes(g)...)
	out = append(out, d.Haloalkanes(g)...)
	return out
}

// Contains reports whether any match in the slice carries the tag.
func Contains(matches []chem.FunctionalGroupMatch, tag chem.FunctionalGroupTag) bool {
	for _, m := range matches {
		if m.Tag == tag {
			return true
		}
	}
	return false
}

// Tags returns the distinct tags present in the matches, in first-seen order.
func Tags(matches []chem.FunctionalGroupMatch) []chem.FunctionalGroupTag {
	seen := make(map[chem.FunctionalGroupTag]bool, len(matches))
	var out []chem.FunctionalGroupTag
	for _, m := range matches {
		if !seen[m.Tag] {
			seen[m.Tag] = true
			out = append(out, m.Tag)
		}
	}
	return out
}

// Alcohols matches an oxygen with exactly one bond, that bond single, and the
// neighbor a carbon.
func (d *Detector) Alcohols(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, a := range g.Atoms() {
		if a.Element != "O" {
			continue
		}
		bonds := g.BondsOf(a.ID)
		if len(bonds) != 1 || bonds[0].Order != 1 {
			continue
		}
		nb, _ := bonds[0].Other(a.ID)
		if atom, ok := g.Atom(nb); ok && atom.Element == "C" {
			out = append(out, chem.FunctionalGroupMatch{
				Tag:     chem.GroupAlcohol,
				AtomIDs: []chem.AtomID{a.ID, nb},
			})
		}
	}
	return out
}

// Amines matches a nitrogen bonded to at least one carbon and classifies it
// by its explicit hydrogen neighbors: two means primary, one means secondary,
// none with three bonds total means tertiary.
func (d *Detector) Amines(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, a := range g.Atoms() {
		if a.Element != "N" {
			continue
		}
		carbons, hydrogens := 0, 0
		members := []chem.AtomID{a.ID}
		for _, nb := range g.Neighbors(a.ID) {
			atom, ok := g.Atom(nb)
			if !ok {
				continue
			}
			switch atom.Element {
			case "C":
				carbons++
				members = append(members, nb)
			case "H":
				hydrogens++
			}
		}
		if carbons == 0 {
			continue
		}
		var tag chem.FunctionalGroupTag
		switch {
		case hydrogens == 2:
			tag = chem.GroupPrimaryAmine
		case hydrogens == 1:
			tag = chem.GroupSecondaryAmine
		case hydrogens == 0 && g.Degree(a.ID) == 3:
			tag = chem.GroupTertiaryAmine
		default:
			continue
		}
		out = append(out, chem.FunctionalGroupMatch{Tag: tag, AtomIDs: members})
	}
	return out
}

// Carbonyls matches every C=O pair.
func (d *Detector) Carbonyls(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, p := range d.carbonylPairs(g) {
		out = append(out, chem.FunctionalGroupMatch{
			Tag:     chem.GroupCarbonyl,
			AtomIDs: []chem.AtomID{p.c, p.o},
		})
	}
	return out
}

// Aldehydes matches a carbonyl carbon with exactly one carbon neighbor.
func (d *Detector) Aldehydes(g *graph.Graph) []chem.FunctionalGroupMatch {
	return d.carbonylsByCarbonCount(g, 1, chem.GroupAldehyde)
}

// Ketones matches a carbonyl carbon with exactly two carbon neighbors.
func (d *Detector) Ketones(g *graph.Graph) []chem.FunctionalGroupMatch {
	return d.carbonylsByCarbonCount(g, 2, chem.GroupKetone)
}

// CarboxylicAcids matches a carbonyl carbon additionally single-bonded to an
// oxygen that itself has exactly one bond (the hydroxyl oxygen).
func (d *Detector) CarboxylicAcids(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, p := range d.carbonylPairs(g) {
		c, o := p.c, p.o
		for _, b := range g.BondsOf(c) {
			if b.Order != 1 {
				continue
			}
			nb, _ := b.Other(c)
			atom, ok := g.Atom(nb)
			if !ok || atom.Element != "O" || g.Degree(nb) != 1 {
				continue
			}
			out = append(out, chem.FunctionalGroupMatch{
				Tag:     chem.GroupCarboxylicAcid,
				AtomIDs: []chem.AtomID{c, o, nb},
			})
			break
		}
	}
	return out
}

// Esters matches a carbonyl carbon with a singly-bonded oxygen that is bonded
// onward to another carbon.
func (d *Detector) Esters(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, p := range d.carbonylPairs(g) {
		c, o := p.c, p.o
		for _, b := range g.BondsOf(c) {
			if b.Order != 1 {
				continue
			}
			bridge, _ := b.Other(c)
			atom, ok := g.Atom(bridge)
			if !ok || atom.Element != "O" {
				continue
			}
			for _, nb := range g.Neighbors(bridge) {
				if nb == c {
					continue
				}
				if onward, ok := g.Atom(nb); ok && onward.Element == "C" {
					out = append(out, chem.FunctionalGroupMatch{
						Tag:     chem.GroupEster,
						AtomIDs: []chem.AtomID{c, o, bridge, nb},
					})
				}
			}
		}
	}
	return out
}

// Alkenes matches every C=C bond.
func (d *Detector) Alkenes(g *graph.Graph) []chem.FunctionalGroupMatch {
	return d.carbonCarbonByOrder(g, 2, chem.GroupAlkene)
}

// Alkynes matches every C≡C bond.
func (d *Detector) Alkynes(g *graph.Graph) []chem.FunctionalGroupMatch {
	return d.carbonCarbonByOrder(g, 3, chem.GroupAlkyne)
}

// Haloalkanes matches every carbon bonded to F, Cl, Br, or I.
func (d *Detector) Haloalkanes(g *graph.Graph) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, b := range g.Bonds() {
		a1, ok1 := g.Atom(b.Atom1)
		a2, ok2 := g.Atom(b.Atom2)
		if !ok1 || !ok2 {
			continue
		}
		switch {
		case a1.Element == "C" && chem.IsHalogen(a2.Element):
			out = append(out, chem.FunctionalGroupMatch{
				Tag:     chem.GroupHaloalkane,
				AtomIDs: []chem.AtomID{a1.ID, a2.ID},
			})
		case a2.Element == "C" && chem.IsHalogen(a1.Element):
			out = append(out, chem.FunctionalGroupMatch{
				Tag:     chem.GroupHaloalkane,
				AtomIDs: []chem.AtomID{a2.ID, a1.ID},
			})
		}
	}
	return out
}

type carbonylPair struct {
	c chem.AtomID
	o chem.AtomID
}

// carbonylPairs lists each carbonyl carbon with its double-bonded oxygen, in
// bond insertion order.  A carbon with two carbonyl oxygens keeps the first.
func (d *Detector) carbonylPairs(g *graph.Graph) []carbonylPair {
	seen := make(map[chem.AtomID]bool)
	var pairs []carbonylPair
	for _, b := range g.Bonds() {
		if b.Order != 2 {
			continue
		}
		a1, ok1 := g.Atom(b.Atom1)
		a2, ok2 := g.Atom(b.Atom2)
		if !ok1 || !ok2 {
			continue
		}
		var c, o chem.AtomID
		switch {
		case a1.Element == "C" && a2.Element == "O":
			c, o = a1.ID, a2.ID
		case a2.Element == "C" && a1.Element == "O":
			c, o = a2.ID, a1.ID
		default:
			continue
		}
		if !seen[c] {
			seen[c] = true
			pairs = append(pairs, carbonylPair{c: c, o: o})
		}
	}
	return pairs
}

func (d *Detector) carbonylsByCarbonCount(g *graph.Graph, carbons int, tag chem.FunctionalGroupTag) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, p := range d.carbonylPairs(g) {
		count := 0
		for _, nb := range g.Neighbors(p.c) {
			if atom, ok := g.Atom(nb); ok && atom.Element == "C" {
				count++
			}
		}
		if count == carbons {
			out = append(out, chem.FunctionalGroupMatch{
				Tag:     tag,
				AtomIDs: []chem.AtomID{p.c, p.o},
			})
		}
	}
	return out
}

func (d *Detector) carbonCarbonByOrder(g *graph.Graph, order int, tag chem.FunctionalGroupTag) []chem.FunctionalGroupMatch {
	var out []chem.FunctionalGroupMatch
	for _, b := range g.Bonds() {
		if b.Order != order {
			continue
		}
		a1, ok1 := g.Atom(b.Atom1)
		a2, ok2 := g.Atom(b.Atom2)
		if ok1 && ok2 && a1.Element == "C" && a2.Element == "C" {
			out = append(out, chem.FunctionalGroupMatch{
				Tag:     tag,
				AtomIDs: []chem.AtomID{b.Atom1, b.Atom2},
			})
		}
	}
	return out
}
