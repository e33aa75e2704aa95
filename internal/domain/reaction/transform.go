package reaction

import (
	"math"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/groups"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/layout"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// appendBondLength is the display distance for atoms appended by a rewrite.
const appendBondLength = 1.0

// Transformer applies category-specific graph rewrites.  Every rewrite runs
// against a clone of the input graph: fresh atom/bond ids, preserved
// element/charge/order data, and the reactant graph is never mutated.
type Transformer struct {
	detector *groups.Detector
	analyzer *structure.Analyzer
	layout   layout.Options
	log      logging.Logger
}

// NewTransformer constructs a Transformer.  Nil collaborators get defaults.
func NewTransformer(detector *groups.Detector, analyzer *structure.Analyzer, log logging.Logger) *Transformer {
	return NewTransformerWith(detector, analyzer, layout.Options{}, log)
}

// NewTransformerWith additionally takes the layout tuning; a zero Options
// falls back to the defaults.
func NewTransformerWith(detector *groups.Detector, analyzer *structure.Analyzer, opts layout.Options, log logging.Logger) *Transformer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if detector == nil {
		detector = groups.NewDetector(log)
	}
	if analyzer == nil {
		analyzer = structure.NewAnalyzer(log)
	}
	if opts == (layout.Options{}) {
		opts = layout.DefaultOptions()
	}
	return &Transformer{
		detector: detector,
		analyzer: analyzer,
		layout:   opts,
		log:      log.Named("transformer"),
	}
}

// Apply rewrites a clone of g according to the validated category and returns
// the product graph.  The rewrite is followed by a cosmetic force-relaxation
// pass; positions move, chemistry does not.
func (t *Transformer) Apply(g *graph.Graph, category string, req chem.ReactionRequest) (*graph.Graph, error) {
	if g == nil || g.AtomCount() == 0 {
		return nil, errors.New(errors.ErrCodeReactionNoMolecule, "no molecule to transform")
	}

	product, _ := g.Clone()

	var err error
	switch category {
	case CategoryOxidation:
		err = t.oxidize(product)
	case CategoryReduction:
		err = t.reduce(product)
	case CategoryHalogenation:
		err = t.halogenate(product, req)
	case CategoryHydrohalogenation:
		err = t.hydrohalogenate(product, req)
	case CategoryElimination:
		err = t.eliminate(product)
	case CategoryDehydration:
		err = t.dehydrate(product)
	case CategoryAldolCondensation:
		err = t.aldol(product)
	case CategoryClaisenCondensation:
		err = t.claisen(product)
	case CategoryFriedelCraftsAcyl:
		err = t.friedelCrafts(product, true)
	case CategoryFriedelCraftsAlkyl:
		err = t.friedelCrafts(product, false)
	case CategoryMichaelAddition:
		err = t.michael(product)
	case CategoryRetroAldol:
		err = t.retroAldol(product)
	default:
		return nil, errors.Newf(errors.ErrCodeReactionUnknownCategory,
			"no rewrite rule for category %q", category)
	}
	if err != nil {
		return nil, err
	}

	layout.Relax(product, t.layout)
	t.log.Info("transformation applied",
		logging.String("category", category),
		logging.Int("product_atoms", product.AtomCount()))
	return product, nil
}

// oxidize raises the C–O single bond of the first alcohol to a double bond;
// when no alcohol exists, the first aldehyde gains a hydroxyl to become a
// carboxylic acid.
func (t *Transformer) oxidize(g *graph.Graph) error {
	if alcohols := t.detector.Alcohols(g); len(alcohols) > 0 {
		o, c := alcohols[0].AtomIDs[0], alcohols[0].AtomIDs[1]
		_, err := g.AddBond(c, o, 2)
		return err
	}
	if aldehydes := t.detector.Aldehydes(g); len(aldehydes) > 0 {
		c := aldehydes[0].AtomIDs[0]
		t.appendAtom(g, c, "O", 1)
		return nil
	}
	return errors.New(errors.ErrCodeReactionRewriteFailed,
		"oxidation needs an alcohol or aldehyde to rewrite")
}

// reduce lowers the first C=O to a single bond; with no carbonyl, the first
// C=C is saturated instead (catalytic hydrogenation).
func (t *Transformer) reduce(g *graph.Graph) error {
	if carbonyls := t.detector.Carbonyls(g); len(carbonyls) > 0 {
		c, o := carbonyls[0].AtomIDs[0], carbonyls[0].AtomIDs[1]
		_, err := g.AddBond(c, o, 1)
		return err
	}
	if alkenes := t.detector.Alkenes(g); len(alkenes) > 0 {
		a, b := alkenes[0].AtomIDs[0], alkenes[0].AtomIDs[1]
		_, err := g.AddBond(a, b, 1)
		return err
	}
	return errors.New(errors.ErrCodeReactionRewriteFailed,
		"reduction needs a carbonyl or alkene to rewrite")
}

// halogenate saturates the first C=C (or lowers a C≡C by one) and appends one
// halogen to each reacting carbon at an angular offset.
func (t *Transformer) halogenate(g *graph.Graph, req chem.ReactionRequest) error {
	hal := halogenFromReagents(req.Reagents)

	if alkenes := t.detector.Alkenes(g); len(alkenes) > 0 {
		a, b := alkenes[0].AtomIDs[0], alkenes[0].AtomIDs[1]
		if _, err := g.AddBond(a, b, 1); err != nil {
			return err
		}
		t.appendAtom(g, a, hal, 1)
		t.appendAtom(g, b, hal, 1)
		return nil
	}
	if alkynes := t.detector.Alkynes(g); len(alkynes) > 0 {
		a, b := alkynes[0].AtomIDs[0], alkynes[0].AtomIDs[1]
		if _, err := g.AddBond(a, b, 2); err != nil {
			return err
		}
		t.appendAtom(g, a, hal, 1)
		t.appendAtom(g, b, hal, 1)
		return nil
	}

	// Radical substitution on a saturated substrate: the first carbon gains
	// the halogen; hydrogen accounting is implicit.
	for _, a := range g.Atoms() {
		if a.Element == "C" {
			t.appendAtom(g, a.ID, hal, 1)
			return nil
		}
	}
	return errors.New(errors.ErrCodeReactionRewriteFailed,
		"halogenation needs a carbon framework to rewrite")
}

// hydrohalogenate saturates the first C=C and appends the halogen to the
// first of the two carbons.  No Markovnikov ranking is performed.
func (t *Transformer) hydrohalogenate(g *graph.Graph, req chem.ReactionRequest) error {
	alkenes := t.detector.Alkenes(g)
	if len(alkenes) == 0 {
		if alkynes := t.detector.Alkynes(g); len(alkynes) > 0 {
			a, b := alkynes[0].AtomIDs[0], alkynes[0].AtomIDs[1]
			if _, err := g.AddBond(a, b, 2); err != nil {
				return err
			}
			t.appendAtom(g, a, halogenFromReagents(req.Reagents), 1)
			return nil
		}
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"hydrohalogenation needs an alkene or alkyne to rewrite")
	}
	a, b := alkenes[0].AtomIDs[0], alkenes[0].AtomIDs[1]
	if _, err := g.AddBond(a, b, 1); err != nil {
		return err
	}
	t.appendAtom(g, a, halogenFromReagents(req.Reagents), 1)
	return nil
}

// eliminate removes the first leaving group (halide, else hydroxyl) and
// promotes the first structurally eligible adjacent C–C single bond to a
// double bond.  First-eligible is deliberate: no Zaitsev ranking.
func (t *Transformer) eliminate(g *graph.Graph) error {
	if halo := t.detector.Haloalkanes(g); len(halo) > 0 {
		return t.removeLeavingGroup(g, halo[0].AtomIDs[0], halo[0].AtomIDs[1])
	}
	if alcohols := t.detector.Alcohols(g); len(alcohols) > 0 {
		return t.removeLeavingGroup(g, alcohols[0].AtomIDs[1], alcohols[0].AtomIDs[0])
	}
	return errors.New(errors.ErrCodeReactionRewriteFailed,
		"elimination needs a halide or hydroxyl leaving group")
}

// dehydrate is elimination restricted to a hydroxyl leaving group.
func (t *Transformer) dehydrate(g *graph.Graph) error {
	alcohols := t.detector.Alcohols(g)
	if len(alcohols) == 0 {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"dehydration needs a hydroxyl group to remove")
	}
	return t.removeLeavingGroup(g, alcohols[0].AtomIDs[1], alcohols[0].AtomIDs[0])
}

// removeLeavingGroup drops the leaving atom bonded to carbon and promotes the
// first adjacent C–C single bond to a double bond.
func (t *Transformer) removeLeavingGroup(g *graph.Graph, carbon, leaving chem.AtomID) error {
	var promote *graph.Bond
	for _, b := range g.BondsOf(carbon) {
		other, _ := b.Other(carbon)
		if other == leaving || b.Order != 1 {
			continue
		}
		if atom, ok := g.Atom(other); ok && atom.Element == "C" {
			bond := b
			promote = &bond
			break
		}
	}
	if promote == nil {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"no eligible adjacent carbon-carbon bond to promote")
	}
	if err := g.RemoveAtom(leaving); err != nil {
		return err
	}
	_, err := g.AddBond(promote.Atom1, promote.Atom2, 2)
	return err
}

// aldol joins the alpha carbon of the second carbonyl compound to the first
// carbonyl carbon and lowers that C=O to the new hydroxyl-bearing single
// bond.  Two carbonyl motifs must be present (self-condensation counts when
// the graph holds two molecules).
func (t *Transformer) aldol(g *graph.Graph) error {
	carbonyls := t.detector.Carbonyls(g)
	if len(carbonyls) < 2 {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"aldol condensation needs two carbonyl motifs")
	}
	acceptorC, acceptorO := carbonyls[0].AtomIDs[0], carbonyls[0].AtomIDs[1]
	alpha, ok := t.alphaCarbon(g, carbonyls[1].AtomIDs[0])
	if !ok {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"the donor carbonyl has no alpha carbon")
	}
	if _, err := g.AddBond(alpha, acceptorC, 1); err != nil {
		return err
	}
	_, err := g.AddBond(acceptorC, acceptorO, 1)
	return err
}

// claisen joins the alpha carbon of the second ester to the first ester's
// carbonyl carbon and expels the first ester's alkoxy bridge.
func (t *Transformer) claisen(g *graph.Graph) error {
	esters := t.detector.Esters(g)
	if len(esters) < 2 {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"Claisen condensation needs two ester motifs")
	}
	acceptorC, bridgeO := esters[0].AtomIDs[0], esters[0].AtomIDs[2]
	alpha, ok := t.alphaCarbon(g, esters[1].AtomIDs[0])
	if !ok {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"the donor ester has no alpha carbon")
	}
	if bond, found := g.BondBetween(acceptorC, bridgeO); found {
		if err := g.RemoveBond(bond.ID); err != nil {
			return err
		}
	}
	_, err := g.AddBond(alpha, acceptorC, 1)
	return err
}

// friedelCrafts appends an alkyl or acyl carbon to the first aromatic ring
// carbon.
func (t *Transformer) friedelCrafts(g *graph.Graph, acyl bool) error {
	rings := t.analyzer.AromaticRings(g)
	if len(rings) == 0 {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"Friedel-Crafts needs an aromatic ring")
	}
	var target chem.AtomID
	found := false
	for _, id := range rings[0] {
		if atom, ok := g.Atom(id); ok && atom.Element == "C" {
			target = id
			found = true
			break
		}
	}
	if !found {
		return errors.New(errors.ErrCodeReactionRewriteFailed,
			"the aromatic ring has no carbon to substitute")
	}
	newC := t.appendAtom(g, target, "C", 1)
	if acyl {
		t.appendAtom(g, newC, "O", 2)
	}
	return nil
}

// michael saturates the enone C=C and appends the nucleophile carbon to the
// beta carbon (the alkene carbon farther from the carbonyl).
func (t *Transformer) michael(g *graph.Graph) error {
	carbonyls := t.detector.Carbonyls(g)
	for _, alkene := range t.detector.Alkenes(g) {
		a, b := alkene.AtomIDs[0], alkene.AtomIDs[1]
		for _, carbonyl := range carbonyls {
			cc := carbonyl.AtomIDs[0]
			var beta chem.AtomID
			if adjacent(g, a, cc) {
				beta = b
			} else if adjacent(g, b, cc) {
				beta = a
			} else {
				continue
			}
			if _, err := g.AddBond(a, b, 1); err != nil {
				return err
			}
			t.appendAtom(g, beta, "C", 1)
			return nil
		}
	}
	return errors.New(errors.ErrCodeReactionRewriteFailed,
		"Michael addition needs an alkene conjugated to a carbonyl")
}

// retroAldol breaks the carbinol-to-alpha C–C bond of a beta-hydroxy
// carbonyl and restores the carbonyl on the carbinol carbon.
func (t *Transformer) retroAldol(g *graph.Graph) error {
	for _, alcohol := range t.detector.Alcohols(g) {
		o, carbinol := alcohol.AtomIDs[0], alcohol.AtomIDs[1]
		for _, b := range g.BondsOf(carbinol) {
			alpha, _ := b.Other(carbinol)
			if alpha == o || b.Order != 1 {
				continue
			}
			atom, ok := g.Atom(alpha)
			if !ok || atom.Element != "C" || !t.isAlphaToCarbonyl(g, alpha, carbinol) {
				continue
			}
			if err := g.RemoveBond(b.ID); err != nil {
				return err
			}
			_, err := g.AddBond(carbinol, o, 2)
			return err
		}
	}
	return errors.New(errors.ErrCodeReactionRewriteFailed,
		"retro-aldol needs a beta-hydroxy carbonyl motif")
}

// adjacent reports whether a bond connects the two atoms.
func adjacent(g *graph.Graph, a, b chem.AtomID) bool {
	_, ok := g.BondBetween(a, b)
	return ok
}

// alphaCarbon returns the first carbon neighbor of the carbonyl carbon.
func (t *Transformer) alphaCarbon(g *graph.Graph, carbonylC chem.AtomID) (chem.AtomID, bool) {
	for _, nb := range g.Neighbors(carbonylC) {
		if atom, ok := g.Atom(nb); ok && atom.Element == "C" {
			return nb, true
		}
	}
	return 0, false
}

// isAlphaToCarbonyl reports whether the atom neighbors a carbonyl carbon
// other than via the excluded atom.
func (t *Transformer) isAlphaToCarbonyl(g *graph.Graph, id, exclude chem.AtomID) bool {
	for _, nb := range g.Neighbors(id) {
		if nb == exclude {
			continue
		}
		for _, b := range g.BondsOf(nb) {
			if b.Order != 2 {
				continue
			}
			other, _ := b.Other(nb)
			if atom, ok := g.Atom(other); ok && atom.Element == "O" {
				if nbAtom, ok := g.Atom(nb); ok && nbAtom.Element == "C" {
					return true
				}
			}
		}
	}
	return false
}

// appendAtom adds a new atom bonded to base, positioned at an angular offset
// from the base atom's existing bonds.  The position only matters for
// display.
func (t *Transformer) appendAtom(g *graph.Graph, base chem.AtomID, element string, order int) chem.AtomID {
	baseAtom, _ := g.Atom(base)
	angle := t.openAngle(g, base)
	x := baseAtom.X + appendBondLength*math.Cos(angle)
	y := baseAtom.Y + appendBondLength*math.Sin(angle)
	id := g.AddAtom(element, x, y)
	g.AddBond(base, id, order)
	return id
}

// openAngle picks a direction away from the base atom's current neighbors:
// opposite their average direction, or straight up for an isolated atom.
func (t *Transformer) openAngle(g *graph.Graph, base chem.AtomID) float64 {
	baseAtom, _ := g.Atom(base)
	var sx, sy float64
	n := 0
	for _, nb := range g.Neighbors(base) {
		atom, ok := g.Atom(nb)
		if !ok {
			continue
		}
		sx += atom.X - baseAtom.X
		sy += atom.Y - baseAtom.Y
		n++
	}
	if n == 0 || (sx == 0 && sy == 0) {
		return math.Pi / 2
	}
	return math.Atan2(-sy, -sx)
}

// halogenFromReagents extracts the halogen element carried by the supplied
// reagents (Br2 and HBr both deliver Br).  Chlorine is the fallback.
func halogenFromReagents(reagents []string) string {
	for _, r := range reagents {
		switch r {
		case "F2", "HF":
			return "F"
		case "Cl2", "HCl":
			return "Cl"
		case "Br2", "HBr":
			return "Br"
		case "I2", "HI":
			return "I"
		}
	}
	return "Cl"
}
