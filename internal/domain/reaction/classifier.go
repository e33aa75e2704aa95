// Package reaction classifies, validates, and applies chemical reactions
// against a molecular graph: a priority-ordered rule table resolves the
// category, a layered state machine produces a verdict with an advisory
// score, and the transformation engine rewrites a cloned graph into the
// product.
package reaction

import (
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
)

// Classifier resolves a (reagents, conditions) pair to a reaction category by
// scanning an injected priority-ordered table.  The first matching rule wins;
// no match resolves to CategoryUnknown.  The matching algorithm never changes
// when the table does.
type Classifier struct {
	table []Category
	log   logging.Logger
}

// NewClassifier constructs a Classifier over the given table.  An empty table
// falls back to DefaultCategories; a nil logger degrades to the nop
// implementation.
func NewClassifier(table []Category, log logging.Logger) *Classifier {
	if len(table) == 0 {
		table = DefaultCategories()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Classifier{table: table, log: log.Named("classifier")}
}

// Classify returns the name of the first category whose reagent membership
// and condition tests all pass.
func (c *Classifier) Classify(reagents, conditions []string) string {
	if cat, ok := c.Resolve(reagents, conditions); ok {
		return cat.Name
	}
	return CategoryUnknown
}

// Resolve returns the full matching category row, or ok=false when no rule
// matches.
func (c *Classifier) Resolve(reagents, conditions []string) (Category, bool) {
	for _, cat := range c.table {
		if !anyIn(cat.Reagents, reagents) {
			continue
		}
		if len(cat.CoReagents) > 0 && !anyIn(cat.CoReagents, reagents) {
			continue
		}
		if !allIn(cat.Conditions, conditions) {
			continue
		}
		return cat, true
	}
	c.log.Debug("no category matched", logging.Any("reagents", reagents))
	return Category{}, false
}

// Lookup returns the table row with the given name, or ok=false.  Used when
// a caller pre-resolves the category on a request.
func (c *Classifier) Lookup(name string) (Category, bool) {
	for _, cat := range c.table {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
