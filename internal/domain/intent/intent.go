// Package intent classifies a free-text query into one of a closed set of intents.
package intent

import "strings"

// Intent is the routing target of a query.
type Intent int

const (
	// PropertySearch routes the query to the hybrid property search.
	PropertySearch Intent = iota
	// FinancialCalculation routes the query to the mortgage calculator.
	FinancialCalculation
)

func (i Intent) String() string {
	switch i {
	case FinancialCalculation:
		return "financial_calculation"
	case PropertySearch:
		return "property_search"
	default:
		return "unknown"
	}
}

// DefaultFinanceKeywords are the trigger substrings for FinancialCalculation.
var DefaultFinanceKeywords = []string{
	"mutuo", "rata", "calcola",
	"mortgage", "installment", "payment", "calculate",
}

// Classifier is a keyword-presence classifier. The zero value never matches
// and therefore always yields PropertySearch.
type Classifier struct {
	keywords []string
}

// NewClassifier builds a Classifier over the given trigger keywords.
// Keywords are lower-cased; empty entries are dropped since they would match everything.
func NewClassifier(keywords []string) Classifier {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kw = append(kw, k)
		}
	}
	return Classifier{keywords: kw}
}

// Keywords returns a copy of the trigger keywords.
func (c Classifier) Keywords() []string {
	out := make([]string, len(c.keywords))
	copy(out, c.keywords)
	return out
}

// Classify returns FinancialCalculation if the lower-cased text contains any
// trigger keyword as a substring, PropertySearch otherwise.
func (c Classifier) Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			return FinancialCalculation
		}
	}
	return PropertySearch
}
