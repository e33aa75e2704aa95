package valence

// Tables bundles the element data the calculator consults.  The maps are
// treated as immutable after construction; inject a modified copy rather than
// mutating the defaults.
type Tables struct {
	// Standard maps an element symbol to its standard bonding capacity.
	Standard map[string]int

	// Electrons maps an element symbol to its valence electron count.
	Electrons map[string]int

	// Expanded maps elements that can exceed the octet to their maximum
	// bonding capacity.  Fluorine never expands and is deliberately absent.
	Expanded map[string]int

	// RadicalCapable lists the elements for which an unpaired electron is a
	// chemically meaningful state rather than a data-entry artifact.
	RadicalCapable map[string]bool
}

// DefaultTables returns the element data used in production.  The standard
// valences are the authoritative bonding capacities; sulfur and phosphorus
// list their common low-oxidation values here and their hypervalent maxima in
// Expanded.
func DefaultTables() Tables {
	return Tables{
		Standard: map[string]int{
			"H": 1, "C": 4, "N": 3, "O": 2,
			"F": 1, "Cl": 1, "Br": 1, "I": 1,
			"S": 2, "P": 3, "B": 3, "Si": 4,
		},
		Electrons: map[string]int{
			"H": 1, "B": 3, "C": 4, "Si": 4,
			"N": 5, "P": 5, "O": 6, "S": 6,
			"F": 7, "Cl": 7, "Br": 7, "I": 7,
			"Na": 1, "K": 1, "Li": 1, "Mg": 2, "Ca": 2,
		},
		Expanded: map[string]int{
			"P": 5, "S": 6, "Cl": 7, "Br": 7, "I": 7, "Xe": 8,
		},
		RadicalCapable: map[string]bool{
			"C": true, "N": true, "O": true, "S": true,
			"P": true, "Cl": true, "Br": true, "I": true,
		},
	}
}
