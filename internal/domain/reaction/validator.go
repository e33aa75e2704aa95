package reaction

import (
	"fmt"
	"strings"

	"github.com/turtacn/ChemRxn-Engine/internal/domain/graph"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/groups"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/valence"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/pkg/types/chem"
)

// Validator runs the per-call validation state machine.  It persists no state
// between calls: every verdict is a pure function of the input graph, the
// request, and the injected rule tables.
type Validator struct {
	classifier *Classifier
	detector   *groups.Detector
	analyzer   *structure.Analyzer
	calculator *valence.Calculator
	incompat   []Incompatibility
	scoring    Scoring
	log        logging.Logger
}

// NewValidator constructs a Validator.  Nil collaborators are replaced with
// defaults so callers only inject what they customize.
func NewValidator(
	classifier *Classifier,
	detector *groups.Detector,
	analyzer *structure.Analyzer,
	calculator *valence.Calculator,
	incompat []Incompatibility,
	scoring Scoring,
	log logging.Logger,
) *Validator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if classifier == nil {
		classifier = NewClassifier(nil, log)
	}
	if detector == nil {
		detector = groups.NewDetector(log)
	}
	if analyzer == nil {
		analyzer = structure.NewAnalyzer(log)
	}
	if calculator == nil {
		calculator = valence.NewDefaultCalculator(log)
	}
	if len(incompat) == 0 {
		incompat = DefaultIncompatibilities()
	}
	if scoring == (Scoring{}) {
		scoring = DefaultScoring()
	}
	return &Validator{
		classifier: classifier,
		detector:   detector,
		analyzer:   analyzer,
		calculator: calculator,
		incompat:   incompat,
		scoring:    scoring,
		log:        log.Named("validator"),
	}
}

// NewDefaultValidator constructs a Validator over the production rule tables.
func NewDefaultValidator(log logging.Logger) *Validator {
	return NewValidator(nil, nil, nil, nil, nil, Scoring{}, log)
}

// Validate runs the full state machine and returns a fresh verdict.  Steps:
// preflight, incompatibilities, classification, reagent requirement,
// functional-group requirement, conditions, scoring, advisories.  The first
// blocking failure short-circuits with valid=false and exactly one error;
// advisories never change validity.
func (v *Validator) Validate(g *graph.Graph, req chem.ReactionRequest) chem.ReactionVerdict {
	verdict := chem.ReactionVerdict{Category: req.Category}

	// Step 1: preflight.  Nothing else runs against a missing substrate or
	// an empty reagent list, not even classification.
	switch {
	case g == nil || g.AtomCount() == 0:
		return reject(verdict, "no molecule supplied: draw or import a structure first")
	case g.AtomCount() < 2:
		return reject(verdict, "molecule has fewer than 2 atoms: nothing can react")
	case len(req.Reagents) == 0:
		return reject(verdict, "no reagents supplied: select at least one reagent")
	}

	// Step 2: hard incompatibilities.  Danger rules invalidate the reaction
	// on any substrate, before the category checks get a say.  The category
	// is still resolved best-effort so the verdict names what was attempted.
	for _, rule := range v.incompat {
		if anyIn(rule.ReagentsAny, req.Reagents) &&
			(anyIn(rule.WithAny, req.Conditions) || anyIn(rule.WithAny, req.Reagents)) {
			if verdict.Category == "" {
				if cat, ok := v.classifier.Resolve(req.Reagents, req.Conditions); ok {
					verdict.Category = cat.Name
				}
			}
			verdict.Score = 0
			return reject(verdict, rule.Message)
		}
	}

	// Step 3: classification, unless the caller pre-resolved the category.
	var cat Category
	if req.Category != "" && req.Category != CategoryUnknown {
		found, ok := v.classifier.Lookup(req.Category)
		if !ok {
			return reject(verdict, fmt.Sprintf("unknown reaction category %q", req.Category))
		}
		cat = found
	} else {
		resolved, ok := v.classifier.Resolve(req.Reagents, req.Conditions)
		if !ok {
			verdict.Category = CategoryUnknown
			return reject(verdict, "no reaction category matches the supplied reagents and conditions")
		}
		cat = resolved
	}
	verdict.Category = cat.Name

	// Step 4: the category must declare reagents and at least one supplied
	// reagent must be among them.
	if len(cat.Reagents) == 0 {
		return reject(verdict, fmt.Sprintf("category %q declares no required reagents and cannot be validated", cat.Name))
	}
	if !anyIn(cat.Reagents, req.Reagents) {
		return reject(verdict, fmt.Sprintf(
			"none of the supplied reagents apply to %s: expected one of %s",
			cat.Name, strings.Join(cat.Reagents, ", ")))
	}

	// Step 5: functional-group requirement.  Categories with a
	// saturated-substrate rule tolerate a missing group here; the substrate
	// then answers to the condition check instead.
	matches := v.detector.DetectAll(g)
	groupPresent := false
	for _, tag := range cat.RequiredGroups {
		if groups.Contains(matches, tag) {
			groupPresent = true
			break
		}
	}
	if len(cat.RequiredGroups) > 0 && !groupPresent && len(cat.SaturatedNeedsConditions) == 0 {
		return reject(verdict, fmt.Sprintf(
			"%s requires one of [%s] but the molecule only contains [%s]",
			cat.Name, joinTags(cat.RequiredGroups), joinTags(groups.Tags(matches))))
	}
	if cat.RequiresAromaticRing && len(v.analyzer.AromaticRings(g)) == 0 {
		return reject(verdict, fmt.Sprintf("%s requires an aromatic ring in the substrate", cat.Name))
	}

	// Step 6: conditions.  Table conditions were already matched during
	// classification but must hold for pre-resolved categories too; the
	// substrate-dependent rule kicks in when none of the category's
	// unsaturated groups are present.
	if !allIn(cat.Conditions, req.Conditions) {
		return reject(verdict, fmt.Sprintf(
			"%s requires conditions [%s]", cat.Name, strings.Join(cat.Conditions, ", ")))
	}
	if len(cat.SaturatedNeedsConditions) > 0 && !groupPresent {
		if !anyIn(cat.SaturatedNeedsConditions, req.Conditions) {
			return reject(verdict, fmt.Sprintf(
				"%s on a saturated substrate requires one of [%s]",
				cat.Name, strings.Join(cat.SaturatedNeedsConditions, ", ")))
		}
	}

	// Step 7: scoring.  Conditions earn their bonus only when the category
	// actually demanded some; a vacuous requirement is not favorable.
	score := v.scoring.Base + v.scoring.ReagentBonus
	if groupPresent {
		score += v.scoring.GroupBonus
	}
	if len(cat.Conditions) > 0 {
		score += v.scoring.ConditionBonus
	}
	verdict.Score = clampScore(score)
	verdict.Valid = true

	// Step 8: advisories.  Warnings and suggestions never change validity.
	v.appendAdvisories(g, &verdict)

	v.log.Info("reaction validated",
		logging.String("category", verdict.Category),
		logging.Int("score", verdict.Score))
	return verdict
}

// appendAdvisories adds the charge-balance and valence warnings plus
// usability suggestions.
func (v *Validator) appendAdvisories(g *graph.Graph, verdict *chem.ReactionVerdict) {
	if total := g.TotalCharge(); total != 0 {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("molecule is not charge balanced: net charge %+d", total))
	}
	for _, a := range g.Atoms() {
		if !v.calculator.IsValenceSatisfied(g, a.ID) {
			verdict.Warnings = append(verdict.Warnings,
				fmt.Sprintf("atom %d (%s) exceeds its allowed valence", a.ID, a.Element))
		}
		if v.calculator.IsRadical(g, a.ID) {
			verdict.Warnings = append(verdict.Warnings,
				fmt.Sprintf("atom %d (%s) carries an unpaired electron", a.ID, a.Element))
		}
	}
	if verdict.Score < 100 {
		verdict.Suggestions = append(verdict.Suggestions,
			"supplying the recommended reaction conditions raises confidence")
	}
}

func reject(verdict chem.ReactionVerdict, msg string) chem.ReactionVerdict {
	verdict.Valid = false
	verdict.Errors = []string{msg}
	return verdict
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func joinTags(tags []chem.FunctionalGroupTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
