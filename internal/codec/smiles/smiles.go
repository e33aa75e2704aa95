// Package smiles reads and writes a best-effort SMILES subset: organic
// element symbols (one or two letters), -/=/#/: bond symbols, parenthesized
// branches, single-digit ring closures, and lowercase aromatic atoms.  The
// subset exists for round-tripping simple acyclic and aromatic structures,
// not for full-grammar coverage.
package smiles

import (
	"strings"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// bondSymbols maps a core bond order to its SMILES symbol.  Single bonds are
// implicit.
var bondSymbols = map[int]string{1: "", 2: "=", 3: "#"}

type ringClosure struct {
	atom     chem.AtomID
	order    int
	aromatic bool
}

// Parse builds a molecular graph from a SMILES string.  Aromatic bonds
// (lowercase atoms or the ':' symbol) enter the core as alternating single
// and double bonds so the structural analyzer's Hückel check sees the ring
// the way the notation intends.
func Parse(s string) (*graph.Graph, error) {
	g := graph.New()
	if strings.TrimSpace(s) == "" {
		return g, nil
	}

	var (
		stack         []chem.AtomID
		prev          chem.AtomID
		havePrev      bool
		order         = 1
		aromaticBond  bool
		closures      = map[byte]ringClosure{}
		aromaticAtoms = map[chem.AtomID]bool{}
		aromaticBonds []chem.BondID
	)

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '-' || c == '=' || c == '#' || c == ':':
			switch c {
			case '-':
				order = 1
			case '=':
				order = 2
			case '#':
				order = 3
			case ':':
				order = 1
				aromaticBond = true
			}
			i++

		case c == '(':
			if !havePrev {
				return nil, errors.New(errors.ErrCodeFormatInvalidSMILES, "branch before any atom")
			}
			stack = append(stack, prev)
			i++

		case c == ')':
			if len(stack) == 0 {
				return nil, errors.New(errors.ErrCodeFormatInvalidSMILES, "unbalanced parentheses")
			}
			prev = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			i++

		case c >= '0' && c <= '9':
			if !havePrev {
				return nil, errors.New(errors.ErrCodeFormatInvalidSMILES, "ring digit before any atom")
			}
			if closure, open := closures[c]; open {
				delete(closures, c)
				id, err := g.AddBond(closure.atom, prev, closure.order)
				if err != nil {
					return nil, errors.Wrap(err, errors.ErrCodeFormatInvalidSMILES, "ring closure failed")
				}
				if closure.aromatic || aromaticBond || aromaticAtoms[prev] {
					aromaticBonds = append(aromaticBonds, id)
				}
			} else {
				closures[c] = ringClosure{
					atom:     prev,
					order:    order,
					aromatic: aromaticBond || aromaticAtoms[prev],
				}
			}
			order = 1
			aromaticBond = false
			i++

		case isLetter(c):
			symbol, next, aromatic, err := parseElement(s, i)
			if err != nil {
				return nil, err
			}
			i = next
			id := g.AddAtom(symbol, float64(g.AtomCount()), 0)
			if aromatic {
				aromaticAtoms[id] = true
			}
			if havePrev {
				bondID, err := g.AddBond(prev, id, order)
				if err != nil {
					return nil, errors.Wrap(err, errors.ErrCodeFormatInvalidSMILES, "bond failed")
				}
				if aromaticBond || aromatic {
					aromaticBonds = append(aromaticBonds, bondID)
				}
			}
			prev = id
			havePrev = true
			order = 1
			aromaticBond = false

		default:
			return nil, errors.Newf(errors.ErrCodeFormatInvalidSMILES,
				"unexpected token %q at position %d", string(c), i)
		}
	}

	if len(closures) > 0 {
		return nil, errors.New(errors.ErrCodeFormatInvalidSMILES, "unclosed ring bond")
	}

	kekulize(g, aromaticBonds)
	return g, nil
}

// parseElement reads one element symbol.  A lowercase first letter marks an
// aromatic atom; an uppercase letter may be followed by a lowercase second
// letter (Cl, Br).
func parseElement(s string, i int) (symbol string, next int, aromatic bool, err error) {
	c := s[i]
	if c >= 'a' && c <= 'z' {
		return strings.ToUpper(string(c)), i + 1, true, nil
	}
	if c >= 'A' && c <= 'Z' {
		symbol = string(c)
		i++
		if i < len(s) && s[i] >= 'a' && s[i] <= 'z' && isTwoLetterElement(symbol+string(s[i])) {
			symbol += string(s[i])
			i++
		}
		return symbol, i, false, nil
	}
	return "", i, false, errors.Newf(errors.ErrCodeFormatInvalidSMILES,
		"unexpected token %q", string(c))
}

// twoLetterElements lists the multi-letter symbols the subset accepts, so a
// trailing lowercase aromatic atom is not swallowed into the previous symbol.
var twoLetterElements = map[string]bool{
	"Cl": true, "Br": true, "Si": true, "Na": true, "Li": true,
	"Mg": true, "Ca": true, "Fe": true, "Zn": true, "Cu": true,
}

func isTwoLetterElement(s string) bool { return twoLetterElements[s] }

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// kekulize assigns alternating double bonds along the recorded aromatic
// bonds, in insertion order: a bond becomes double when neither endpoint has
// one yet.  A six-ring of aromatic bonds ends up with three doubles, which is
// what the Hückel check downstream expects.
func kekulize(g *graph.Graph, aromaticBonds []chem.BondID) {
	hasDouble := map[chem.AtomID]bool{}
	for _, b := range g.Bonds() {
		if b.Order == 2 {
			hasDouble[b.Atom1] = true
			hasDouble[b.Atom2] = true
		}
	}
	for _, id := range aromaticBonds {
		bond, ok := g.Bond(id)
		if !ok || bond.Order != 1 {
			continue
		}
		if hasDouble[bond.Atom1] || hasDouble[bond.Atom2] {
			continue
		}
		g.AddBond(bond.Atom1, bond.Atom2, 2)
		hasDouble[bond.Atom1] = true
		hasDouble[bond.Atom2] = true
	}
}

// Write serializes the graph's first connected component to SMILES.  Atoms
// on aromatic rings are written lowercase with implicit ring bonds;
// everything else uses explicit =/# symbols.  The writer first walks a
// spanning tree to find ring-closing bonds, then emits each closure digit on
// both of its endpoints.
func Write(g *graph.Graph) string {
	if g == nil || g.AtomCount() == 0 {
		return ""
	}

	aromaticAtoms := map[chem.AtomID]bool{}
	aromaticPairs := map[[2]chem.AtomID]bool{}
	an := structure.NewAnalyzer(nil)
	for _, ring := range an.AromaticRings(g) {
		for i, id := range ring {
			aromaticAtoms[id] = true
			next := ring[(i+1)%len(ring)]
			aromaticPairs[pairKey(id, next)] = true
		}
	}

	bondSymbol := func(b graph.Bond) string {
		if aromaticPairs[pairKey(b.Atom1, b.Atom2)] {
			return ""
		}
		return bondSymbols[b.Order]
	}

	// Pre-pass: spanning DFS marking every non-tree bond as a ring closure
	// and assigning its digit to both endpoints.
	type ringDigit struct {
		bond chem.BondID
		text string
	}
	start := g.Atoms()[0].ID
	treeBonds := map[chem.BondID]bool{}
	closureBonds := map[chem.BondID]bool{}
	ringDigits := map[chem.AtomID][]ringDigit{}
	visited := map[chem.AtomID]bool{start: true}
	nextDigit := 1

	var mark func(id chem.AtomID)
	mark = func(id chem.AtomID) {
		for _, bond := range g.BondsOf(id) {
			if treeBonds[bond.ID] || closureBonds[bond.ID] {
				continue
			}
			neighbor, _ := bond.Other(id)
			if visited[neighbor] {
				closureBonds[bond.ID] = true
				text := bondSymbol(bond) + string(byte('0'+nextDigit%10))
				nextDigit++
				ringDigits[id] = append(ringDigits[id], ringDigit{bond: bond.ID, text: text})
				ringDigits[neighbor] = append(ringDigits[neighbor], ringDigit{bond: bond.ID, text: text})
				continue
			}
			visited[neighbor] = true
			treeBonds[bond.ID] = true
			mark(neighbor)
		}
	}
	mark(start)

	emitted := map[chem.BondID]bool{}
	var traverse func(id chem.AtomID) string
	traverse = func(id chem.AtomID) string {
		var sb strings.Builder
		sb.WriteString(atomSymbol(g, id, aromaticAtoms))
		for _, d := range ringDigits[id] {
			sb.WriteString(d.text)
		}

		var branches []string
		for _, bond := range g.BondsOf(id) {
			if !treeBonds[bond.ID] || emitted[bond.ID] {
				continue
			}
			emitted[bond.ID] = true
			neighbor, _ := bond.Other(id)
			branches = append(branches, bondSymbol(bond)+traverse(neighbor))
		}
		for i, branch := range branches {
			if i == len(branches)-1 {
				sb.WriteString(branch)
			} else {
				sb.WriteString("(" + branch + ")")
			}
		}
		return sb.String()
	}

	return traverse(start)
}

func atomSymbol(g *graph.Graph, id chem.AtomID, aromaticAtoms map[chem.AtomID]bool) string {
	atom, _ := g.Atom(id)
	if aromaticAtoms[id] && len(atom.Element) == 1 {
		return strings.ToLower(atom.Element)
	}
	return atom.Element
}

func pairKey(a, b chem.AtomID) [2]chem.AtomID {
	if a > b {
		a, b = b, a
	}
	return [2]chem.AtomID{a, b}
}
