package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vraj1091/RAG/tally"
)

// simplePatterns mark queries the live snapshot can answer directly,
// without the generative model.
var simplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(list|show|display)\s+(all\s+)?(ledger|account)`),
	regexp.MustCompile(`^(what\s+is\s+)?(the\s+)?total\s+(number\s+of\s+)?(ledger|account)`),
	regexp.MustCompile(`^how\s+many\s+(ledger|account)`),
	regexp.MustCompile(`^(what\s+is\s+)?(the\s+)?balance\s+(of|for)\s+\w+`),
	regexp.MustCompile(`^(show|display|check)\s+balance\s+(of|for)\s+\w+`),
	regexp.MustCompile(`^(what\s+is\s+)?(the\s+)?account\s+type\s+(of|for)\s+\w+`),
	regexp.MustCompile(`^(what\s+)?type\s+of\s+account\s+(is\s+)?\w+`),
}

// complexTerms veto the fast path even when a simple pattern matched.
var complexTerms = []string{
	"analyze", "analysis", "compare", "comparison", "versus", "vs",
	"trend", "pattern", "insight", "why", "how come", "reason",
	"total revenue", "total sales", "total profit", "sum of", "aggregate",
	"over time", "monthly", "quarterly", "yearly", "period", "last month",
	"average", "mean", "percentage", "ratio", "growth", "decline",
	"all companies", "multiple", "between", "across",
	"chart", "graph", "visualize", "plot",
}

// accountTypeRule maps parent-group keywords to an accounting
// classification. Order matters: first match wins.
type accountTypeRule struct {
	keyword        string
	classification string
}

var accountTypeRules = []accountTypeRule{
	{"debtor", "Asset (Sundry Debtors - Trade Receivables)"},
	{"creditor", "Liability (Sundry Creditors - Trade Payables)"},
	{"cash", "Asset (Cash & Cash Equivalents)"},
	{"bank", "Asset (Bank Accounts)"},
	{"capital", "Liability (Capital/Owner's Equity)"},
	{"revenue", "Income (Revenue/Sales)"},
	{"sales", "Income (Sales Revenue)"},
	{"expense", "Expense (Operating Expenses)"},
	{"loan", "Liability (Loans & Borrowings)"},
	{"fixed asset", "Asset (Fixed Assets - Property, Plant & Equipment)"},
	{"current asset", "Asset (Current Assets)"},
	{"current liability", "Liability (Current Liabilities)"},
}

// BypassEligible reports whether the query matches a simple intent and
// carries no analytical terms. Ineligible queries fall through to the
// full pipeline; there is no way back.
func BypassEligible(query string) bool {
	lowered := strings.ToLower(strings.TrimSpace(query))

	simple := false
	for _, pattern := range simplePatterns {
		if pattern.MatchString(lowered) {
			simple = true
			break
		}
	}
	if !simple {
		return false
	}

	for _, term := range complexTerms {
		if strings.Contains(lowered, term) {
			return false
		}
	}
	return true
}

// ResolveBypass answers an eligible query straight from the snapshot.
// The bool reports success; false means the caller must run the full
// pipeline instead.
func ResolveBypass(query string, snap *tally.Snapshot) (string, bool) {
	if snap == nil || len(snap.Ledgers) == 0 || !BypassEligible(query) {
		return "", false
	}

	lowered := strings.ToLower(query)
	for _, ledger := range snap.Ledgers {
		name := strings.ToLower(ledger.Name)
		if name != "" && strings.Contains(lowered, name) {
			return formatLedgerDetail(ledger, snap), true
		}
	}

	return formatLedgerListing(snap), true
}

func classifyAccount(parentGroup string) string {
	lowered := strings.ToLower(parentGroup)
	for _, rule := range accountTypeRules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.classification
		}
	}
	return fmt.Sprintf("Account Group: %s", parentGroup)
}

func accountNature(classification string) string {
	lowered := strings.ToLower(classification)
	if strings.Contains(lowered, "asset") || strings.Contains(lowered, "expense") {
		return "Debit"
	}
	return "Credit"
}

func formatLedgerDetail(ledger tally.Ledger, snap *tally.Snapshot) string {
	classification := classifyAccount(ledger.Parent)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s - Detailed Account Information**\n\n", ledger.Name))
	sb.WriteString(fmt.Sprintf("**Account Type:** %s\n\n", classification))
	sb.WriteString("**Financial Position:**\n")
	sb.WriteString(fmt.Sprintf("- Opening Balance: %s\n", tally.FormatINR(ledger.OpeningBalance)))
	sb.WriteString(fmt.Sprintf("- Closing Balance: %s\n", tally.FormatINR(ledger.ClosingBalance)))
	sb.WriteString(fmt.Sprintf("- Net Change: %s (%.1f%% %s)\n\n", tally.FormatINR(ledger.NetChange()), absPercent(ledger), ledger.Direction()))
	sb.WriteString("**Classification:**\n")
	sb.WriteString(fmt.Sprintf("- Parent Group: %s\n", ledger.Parent))
	sb.WriteString(fmt.Sprintf("- Account Nature: %s\n\n", accountNature(classification)))
	sb.WriteString("**Data Source:** Live Tally ERP System\n")
	sb.WriteString(fmt.Sprintf("**Retrieved:** %s\n", snap.FetchedAt.Format("2006-01-02 15:04:05")))
	return sb.String()
}

func formatLedgerListing(snap *tally.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Total Ledgers in Tally ERP: %d**\n\n", len(snap.Ledgers)))
	sb.WriteString(fmt.Sprintf("**Retrieved:** %s\n\n", snap.FetchedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("**Complete Ledger List:**\n\n")

	for i, ledger := range snap.Ledgers {
		sb.WriteString(fmt.Sprintf("**%d. %s**\n", i+1, ledger.Name))
		if ledger.Parent != "" {
			sb.WriteString(fmt.Sprintf("   - Group: %s\n", ledger.Parent))
		}
		sb.WriteString(fmt.Sprintf("   - Current Balance: %s\n\n", tally.FormatINR(ledger.ClosingBalance)))
	}

	sb.WriteString(fmt.Sprintf("---\n**Summary:** %d ledgers | Live Tally Data\n", len(snap.Ledgers)))
	return sb.String()
}

func absPercent(ledger tally.Ledger) float64 {
	pct := ledger.PercentChange()
	if pct < 0 {
		return -pct
	}
	return pct
}
