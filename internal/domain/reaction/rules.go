package reaction

import "github.com/turtacn/ChemRxn-Engine/pkg/types/chem"

// CategoryUnknown is the fallback when no rule matches.
const CategoryUnknown = "unknown"

// Category names resolved by the classifier.
const (
	CategoryRetroAldol           = "retro_aldol"
	CategoryAldolCondensation    = "aldol_condensation"
	CategoryClaisenCondensation  = "claisen_condensation"
	CategoryMichaelAddition      = "michael_addition"
	CategoryFriedelCraftsAcyl    = "friedel_crafts_acylation"
	CategoryFriedelCraftsAlkyl   = "friedel_crafts_alkylation"
	CategoryHydrohalogenation    = "hydrohalogenation"
	CategoryHalogenation         = "halogenation"
	CategoryDehydration          = "dehydration"
	CategoryOxidation            = "oxidation"
	CategoryReduction            = "reduction"
	CategoryElimination          = "elimination"
)

// Category is one row of the classifier's rule table.  The table is pure
// data: matching semantics live in the classifier, so external callers can
// extend or reorder the table without touching the algorithm.
type Category struct {
	// Name is the resolved category identifier.
	Name string

	// Reagents is the membership set for the primary reagent: at least one
	// supplied reagent must appear here.  Must be nonempty for the category
	// to be validatable.
	Reagents []string

	// CoReagents, when nonempty, names a second required participant (e.g. a
	// Lewis-acid catalyst alongside an acyl chloride).  At least one supplied
	// reagent must appear here as well.
	CoReagents []string

	// Conditions lists conditions that must all be supplied for the rule to
	// match.
	Conditions []string

	// RequiredGroups is the validator's functional-group requirement: at
	// least one must be present on the substrate.
	RequiredGroups []chem.FunctionalGroupTag

	// RequiresAromaticRing adds a structural requirement on the substrate
	// beyond the functional-group battery.
	RequiresAromaticRing bool

	// SaturatedNeedsConditions lists conditions that become mandatory when
	// the substrate carries none of the category's unsaturated groups (the
	// alkane-halogenation light/heat case).
	SaturatedNeedsConditions []string
}

// Incompatibility is one hard danger rule.  When any supplied reagent is in
// ReagentsAny and any supplied reagent or condition is in WithAny, the
// reaction is invalid regardless of every other check and the score is zero.
type Incompatibility struct {
	ReagentsAny []string
	WithAny     []string
	Message     string
}

// DefaultCategories returns the production rule table in priority order.
// Order matters: multi-condition categories come before their looser
// supersets (aldol condensation before plain elimination), and the first
// matching rule wins.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:           CategoryRetroAldol,
			Reagents:       []string{"NaOH", "KOH", "LiOH"},
			Conditions:     []string{"heat", "dilute"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupAlcohol},
		},
		{
			Name:           CategoryAldolCondensation,
			Reagents:       []string{"NaOH", "KOH", "LiOH", "NaOEt"},
			Conditions:     []string{"heat"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupAldehyde, chem.GroupKetone},
		},
		{
			Name:           CategoryClaisenCondensation,
			Reagents:       []string{"NaOEt", "NaOMe", "KOtBu"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupEster},
		},
		{
			Name:           CategoryMichaelAddition,
			Reagents:       []string{"Et3N", "DBU", "piperidine"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupAlkene},
		},
		{
			Name:                 CategoryFriedelCraftsAcyl,
			Reagents:             []string{"CH3COCl", "C6H5COCl", "(CH3CO)2O"},
			CoReagents:           []string{"AlCl3", "FeCl3"},
			RequiresAromaticRing: true,
		},
		{
			Name:                 CategoryFriedelCraftsAlkyl,
			Reagents:             []string{"CH3Cl", "C2H5Cl", "CH3Br", "C2H5Br"},
			CoReagents:           []string{"AlCl3", "FeCl3"},
			RequiresAromaticRing: true,
		},
		{
			Name:           CategoryHydrohalogenation,
			Reagents:       []string{"HF", "HCl", "HBr", "HI"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupAlkene, chem.GroupAlkyne},
		},
		{
			Name:                     CategoryHalogenation,
			Reagents:                 []string{"F2", "Cl2", "Br2", "I2"},
			RequiredGroups:           []chem.FunctionalGroupTag{chem.GroupAlkene, chem.GroupAlkyne},
			SaturatedNeedsConditions: []string{"light", "heat"},
		},
		{
			Name:           CategoryDehydration,
			Reagents:       []string{"H2SO4", "H3PO4"},
			Conditions:     []string{"heat"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupAlcohol},
		},
		{
			Name:           CategoryOxidation,
			Reagents:       []string{"KMnO4", "K2Cr2O7", "CrO3", "PCC", "H2O2"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupAlcohol, chem.GroupAldehyde},
		},
		{
			Name:     CategoryReduction,
			Reagents: []string{"LiAlH4", "NaBH4", "H2"},
			RequiredGroups: []chem.FunctionalGroupTag{
				chem.GroupCarbonyl, chem.GroupAldehyde, chem.GroupKetone,
				chem.GroupEster, chem.GroupAlkene,
			},
		},
		{
			Name:           CategoryElimination,
			Reagents:       []string{"NaOH", "KOH", "KOtBu", "NaOEt", "NaNH2"},
			RequiredGroups: []chem.FunctionalGroupTag{chem.GroupHaloalkane, chem.GroupAlcohol},
		},
	}
}

// DefaultIncompatibilities returns the production danger rules.
func DefaultIncompatibilities() []Incompatibility {
	return []Incompatibility{
		{
			ReagentsAny: []string{"LiAlH4", "NaBH4"},
			WithAny:     []string{"H2O", "water", "aqueous", "protic", "MeOH", "EtOH"},
			Message:     "strong hydride reagents react violently with aqueous or protic conditions",
		},
		{
			ReagentsAny: []string{"KMnO4", "K2Cr2O7", "CrO3"},
			WithAny:     []string{"LiAlH4", "NaBH4"},
			Message:     "a strong oxidant cannot be combined with a strong reductant",
		},
		{
			ReagentsAny: []string{"Na", "K", "Li"},
			WithAny:     []string{"H2O", "water", "aqueous"},
			Message:     "alkali metals ignite on contact with water",
		},
	}
}

// Scoring carries the validator's tunable score parameters.
type Scoring struct {
	// Base is the starting score of every validated reaction.
	Base int `mapstructure:"base" json:"base"`

	// GroupBonus is added when a required functional group is present.
	GroupBonus int `mapstructure:"group_bonus" json:"group_bonus"`

	// ConditionBonus is added when the category requires conditions and all
	// of them are supplied; a vacuous condition set earns nothing.
	ConditionBonus int `mapstructure:"condition_bonus" json:"condition_bonus"`

	// ReagentBonus is added when a supplied reagent matched the category's
	// primary reagent set.
	ReagentBonus int `mapstructure:"reagent_bonus" json:"reagent_bonus"`
}

// DefaultScoring returns the production score tuning.
func DefaultScoring() Scoring {
	return Scoring{Base: 60, GroupBonus: 20, ConditionBonus: 10, ReagentBonus: 10}
}

// contains reports set membership over a string slice.
func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// anyIn reports whether any supplied value is a member of the set.
func anyIn(set, supplied []string) bool {
	for _, v := range supplied {
		if contains(set, v) {
			return true
		}
	}
	return false
}

// allIn reports whether every required value is among the supplied ones.
func allIn(required, supplied []string) bool {
	for _, v := range required {
		if !contains(supplied, v) {
			return false
		}
	}
	return true
}
