// Package sdf reads and writes a V2000 SDF subset: the counts line, atom and
// bond blocks, and the molfile charge codes.  Property blocks other than
// "M  END" are ignored.
package sdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// chargeFromCode maps the molfile charge column to a formal charge.  Code 4
// (doublet radical) carries no charge.
var chargeFromCode = map[int]int{0: 0, 1: 3, 2: 2, 3: 1, 4: 0, 5: -1, 6: -2, 7: -3}

// codeFromCharge is the writer-side inverse; charges outside the molfile
// range fall back to 0.
var codeFromCharge = map[int]int{3: 1, 2: 2, 1: 3, 0: 0, -1: 5, -2: 6, -3: 7}

const (
	headerLines     = 4
	recordSeparator = "$$$$"
)

// Parse reads one or more molecules from an SDF string.  Bond order code 4
// (aromatic) enters the core as alternating single and double bonds, matching
// the SMILES reader.
func Parse(text string) ([]*graph.Graph, error) {
	var molecules []*graph.Graph
	for _, block := range strings.Split(strings.TrimSpace(text), recordSeparator) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		g, err := parseBlock(block)
		if err != nil {
			return nil, err
		}
		molecules = append(molecules, g)
	}
	return molecules, nil
}

func parseBlock(block string) (*graph.Graph, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < headerLines {
		return nil, errors.New(errors.ErrCodeFormatInvalidSDF, "SDF block too short")
	}

	counts := lines[3]
	atomCount, err := fixedInt(counts, 0, 3)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad atom count")
	}
	bondCount, err := fixedInt(counts, 3, 6)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad bond count")
	}
	if len(lines) < headerLines+atomCount+bondCount {
		return nil, errors.Newf(errors.ErrCodeFormatInvalidSDF,
			"SDF block declares %d atoms and %d bonds but is truncated", atomCount, bondCount)
	}

	g := graph.New()
	ids := make([]chem.AtomID, 0, atomCount)
	for _, line := range lines[headerLines : headerLines+atomCount] {
		id, err := parseAtomLine(g, line)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	var aromaticBonds []chem.BondID
	for _, line := range lines[headerLines+atomCount : headerLines+atomCount+bondCount] {
		bondID, aromatic, err := parseBondLine(g, ids, line)
		if err != nil {
			return nil, err
		}
		if aromatic {
			aromaticBonds = append(aromaticBonds, bondID)
		}
	}

	kekulize(g, aromaticBonds)
	return g, nil
}

// parseAtomLine reads one fixed-width atom line: x[0:10] y[10:20] z[20:30]
// symbol[31:34] chargeCode[36:39].  The z coordinate is parsed for validation
// but dropped; the core graph is planar.
func parseAtomLine(g *graph.Graph, line string) (chem.AtomID, error) {
	x, err := fixedFloat(line, 0, 10)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad atom x coordinate")
	}
	y, err := fixedFloat(line, 10, 20)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad atom y coordinate")
	}
	if _, err := fixedFloat(line, 20, 30); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad atom z coordinate")
	}

	symbol := strings.TrimSpace(slice(line, 31, 34))
	if symbol == "" {
		return 0, errors.New(errors.ErrCodeFormatInvalidSDF, "atom line missing element symbol")
	}

	chargeCode := 0
	if field := strings.TrimSpace(slice(line, 36, 39)); field != "" {
		chargeCode, err = strconv.Atoi(field)
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad charge code")
		}
	}
	charge := chargeFromCode[chargeCode]

	return g.AddAtom(symbol, x, y, graph.WithCharge(charge)), nil
}

// parseBondLine reads one fixed-width bond line: a[0:3] b[3:6] orderCode[6:9].
// Indices are 1-based.  Order code 4 marks an aromatic bond.
func parseBondLine(g *graph.Graph, ids []chem.AtomID, line string) (chem.BondID, bool, error) {
	a, err := fixedInt(line, 0, 3)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad bond atom index")
	}
	b, err := fixedInt(line, 3, 6)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad bond atom index")
	}
	orderCode, err := fixedInt(line, 6, 9)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bad bond order code")
	}
	if a < 1 || a > len(ids) || b < 1 || b > len(ids) {
		return 0, false, errors.Newf(errors.ErrCodeFormatInvalidSDF,
			"bond references atom index out of range: %d-%d", a, b)
	}

	order := 1
	aromatic := false
	switch orderCode {
	case 1, 2, 3:
		order = orderCode
	case 4:
		aromatic = true
	default:
		return 0, false, errors.Newf(errors.ErrCodeFormatInvalidSDF,
			"unsupported bond order code %d", orderCode)
	}

	id, err := g.AddBond(ids[a-1], ids[b-1], order)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeFormatInvalidSDF, "bond failed")
	}
	return id, aromatic, nil
}

// kekulize assigns alternating double bonds along the aromatic bonds, in
// record order: a bond becomes double when neither endpoint has one yet.
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

// Write serializes one molecule to a V2000 block, "$$$$" terminated.  Bonds
// on aromatic rings are written with order code 4.
func Write(g *graph.Graph, name string) string {
	if name == "" {
		name = "Molecule"
	}
	if g == nil {
		g = graph.New()
	}

	aromaticPairs := map[[2]chem.AtomID]bool{}
	an := structure.NewAnalyzer(nil)
	for _, ring := range an.AromaticRings(g) {
		for i, id := range ring {
			aromaticPairs[pairKey(id, ring[(i+1)%len(ring)])] = true
		}
	}

	var sb strings.Builder
	sb.WriteString(name + "\n")
	sb.WriteString("ChemRxn Engine\n\n")
	fmt.Fprintf(&sb, "%3d%3d  0  0  0  0  0  0  0  0  0  0\n", g.AtomCount(), g.BondCount())

	index := map[chem.AtomID]int{}
	for i, atom := range g.Atoms() {
		index[atom.ID] = i + 1
		// The charge code occupies columns 36-38, the field the parser reads.
		fmt.Fprintf(&sb, "%10.4f%10.4f%10.4f %-3s 0%3d  0  0  0  0\n",
			atom.X, atom.Y, 0.0, atom.Element, codeFromCharge[atom.Charge])
	}
	for _, bond := range g.Bonds() {
		code := bond.Order
		if aromaticPairs[pairKey(bond.Atom1, bond.Atom2)] {
			code = 4
		}
		fmt.Fprintf(&sb, "%3d%3d%3d  0  0  0  0\n", index[bond.Atom1], index[bond.Atom2], code)
	}
	sb.WriteString("M  END\n")
	sb.WriteString(recordSeparator + "\n")
	return sb.String()
}

// WriteAll serializes multiple molecules into one SDF document.
func WriteAll(graphs []*graph.Graph, names []string) string {
	var sb strings.Builder
	for i, g := range graphs {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		sb.WriteString(Write(g, name))
	}
	return sb.String()
}

// slice returns s[from:to] tolerating short lines.
func slice(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

func fixedInt(s string, from, to int) (int, error) {
	return strconv.Atoi(strings.TrimSpace(slice(s, from, to)))
}

func fixedFloat(s string, from, to int) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(slice(s, from, to)), 64)
}

func pairKey(a, b chem.AtomID) [2]chem.AtomID {
	if a > b {
		a, b = b, a
	}
	return [2]chem.AtomID{a, b}
}
