package chat

import "strings"

type Complexity int

const (
	ComplexityStandard Complexity = iota
	ComplexityHigh
)

func (c Complexity) String() string {
	if c == ComplexityHigh {
		return "high"
	}
	return "standard"
}

// Classifier decides how much retrieval effort a query deserves.
type Classifier interface {
	Classify(query string) Complexity
}

// complexIndicators mark analytical queries that need wider retrieval.
var complexIndicators = []string{
	"compare", "comparison", "versus", "vs", "between", "across",
	"trend", "over time", "historical", "timeline",
	"analyze", "analysis", "total", "summarize", "summary", "aggregate",
	"relationship", "correlation", "pattern", "distribution",
	"breakdown", "percentage", "ratio", "average", "mean",
}

// KeywordClassifier is the default policy: membership in a fixed
// indicator list.
type KeywordClassifier struct{}

var _ Classifier = KeywordClassifier{}

func (KeywordClassifier) Classify(query string) Complexity {
	lowered := strings.ToLower(query)
	for _, indicator := range complexIndicators {
		if strings.Contains(lowered, indicator) {
			return ComplexityHigh
		}
	}
	return ComplexityStandard
}

var financeKeywords = []string{
	"balance", "ledger", "account", "company", "revenue", "profit",
	"sales", "expense", "cash", "bank", "tally", "financial", "money",
	"income", "cost", "voucher", "transaction", "payment", "receipt",
	"debtors", "creditors", "asset", "liability", "equity", "capital",
}

// IsFinanceQuery reports whether the query touches financial vocabulary
// and therefore warrants a live ledger fetch.
func IsFinanceQuery(query string) bool {
	lowered := strings.ToLower(query)
	for _, keyword := range financeKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
