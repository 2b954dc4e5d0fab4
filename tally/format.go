package tally

import (
	"fmt"
	"strings"
)

// DefaultFormatLimit caps how many ledgers make it into the prompt
// context block.
const DefaultFormatLimit = 50

// FormatSnapshot renders the snapshot as a bounded plain-text block for
// prompt interpolation. A nil or empty snapshot renders as "" so callers
// can treat absence of external data uniformly.
func FormatSnapshot(snap *Snapshot, limit int) string {
	if snap == nil || len(snap.Ledgers) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = DefaultFormatLimit
	}

	var sb strings.Builder
	company := snap.Company
	if company == "" {
		company = "Tally ERP"
	}
	sb.WriteString(fmt.Sprintf("=== LIVE TALLY ERP DATA (%s) ===\n", company))
	sb.WriteString(fmt.Sprintf("Fetched at: %s\n", snap.FetchedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Total Ledger Accounts: %d\n", len(snap.Ledgers)))

	shown := snap.Ledgers
	if len(shown) > limit {
		shown = shown[:limit]
	}

	for i, ledger := range shown {
		sb.WriteString(fmt.Sprintf("\n%d. Ledger: %s\n", i+1, ledger.Name))
		if ledger.Parent != "" {
			sb.WriteString(fmt.Sprintf("   Group: %s\n", ledger.Parent))
		}
		sb.WriteString(fmt.Sprintf("   Opening Balance: %s\n", FormatINR(ledger.OpeningBalance)))
		sb.WriteString(fmt.Sprintf("   Closing Balance: %s\n", FormatINR(ledger.ClosingBalance)))
		sb.WriteString(fmt.Sprintf("   Net Change: %s (%.1f%% %s)\n",
			formatSigned(ledger.NetChange()), absFloat(ledger.PercentChange()), ledger.Direction()))
	}

	if rest := len(snap.Ledgers) - len(shown); rest > 0 {
		sb.WriteString(fmt.Sprintf("\n... and %d more ledger accounts\n", rest))
	}

	return sb.String()
}

// FormatINR renders a rupee amount with comma grouping and two decimals.
func FormatINR(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	whole, frac, _ := strings.Cut(raw, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s₹%s.%s", sign, grouped.String(), frac)
}

func formatSigned(amount float64) string {
	if amount >= 0 {
		return "+" + FormatINR(amount)
	}
	return FormatINR(amount)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
