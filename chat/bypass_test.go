package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/vraj1091/RAG/tally"
)

func testSnapshot() *tally.Snapshot {
	return &tally.Snapshot{
		Company:   "Acme Traders",
		FetchedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		Ledgers: []tally.Ledger{
			{Name: "Cash", Parent: "Cash-in-Hand", OpeningBalance: 1000, ClosingBalance: 1250},
			{Name: "HDFC Bank", Parent: "Bank Accounts", OpeningBalance: 50000, ClosingBalance: 47500},
			{Name: "Sharma Traders", Parent: "Sundry Debtors", OpeningBalance: 0, ClosingBalance: 12000},
		},
	}
}

func TestBypassEligible(t *testing.T) {
	eligible := []string{
		"list all ledgers",
		"how many ledger accounts do we have",
		"what is the balance of cash",
		"show balance of HDFC Bank",
		"what is the account type of Sharma Traders",
	}
	for _, query := range eligible {
		if !BypassEligible(query) {
			t.Errorf("expected %q to be eligible", query)
		}
	}

	ineligible := []string{
		"compare cash and bank balances",
		"list all ledgers and analyze the trend",
		"show balance of cash as a chart",
		"why did the balance of cash decline",
		"summarize the contract terms",
	}
	for _, query := range ineligible {
		if BypassEligible(query) {
			t.Errorf("expected %q to be ineligible", query)
		}
	}
}

func TestResolveBypassListing(t *testing.T) {
	answer, ok := ResolveBypass("how many ledgers are there", testSnapshot())
	if !ok {
		t.Fatal("expected bypass to resolve")
	}
	if !strings.Contains(answer, "Total Ledgers in Tally ERP: 3") {
		t.Errorf("listing missing count:\n%s", answer)
	}
	for _, name := range []string{"Cash", "HDFC Bank", "Sharma Traders"} {
		if !strings.Contains(answer, name) {
			t.Errorf("listing missing ledger %q", name)
		}
	}
}

func TestResolveBypassSpecificLedger(t *testing.T) {
	answer, ok := ResolveBypass("what is the balance of hdfc bank", testSnapshot())
	if !ok {
		t.Fatal("expected bypass to resolve")
	}
	for _, want := range []string{
		"HDFC Bank - Detailed Account Information",
		"Asset (Bank Accounts)",
		"Opening Balance: ₹50,000.00",
		"Closing Balance: ₹47,500.00",
		"Account Nature: Debit",
	} {
		if !strings.Contains(answer, want) {
			t.Errorf("detail answer missing %q:\n%s", want, answer)
		}
	}
}

func TestResolveBypassFallsThrough(t *testing.T) {
	if _, ok := ResolveBypass("compare total ledger balance trend this month", testSnapshot()); ok {
		t.Error("complex query must not resolve via bypass")
	}
	if _, ok := ResolveBypass("list all ledgers", nil); ok {
		t.Error("nil snapshot must not resolve via bypass")
	}
	if _, ok := ResolveBypass("list all ledgers", &tally.Snapshot{}); ok {
		t.Error("empty snapshot must not resolve via bypass")
	}
}

func TestClassifyAccount(t *testing.T) {
	cases := []struct {
		group string
		want  string
	}{
		{"Sundry Debtors", "Asset (Sundry Debtors - Trade Receivables)"},
		{"Sundry Creditors", "Liability (Sundry Creditors - Trade Payables)"},
		{"Cash-in-Hand", "Asset (Cash & Cash Equivalents)"},
		{"Bank Accounts", "Asset (Bank Accounts)"},
		{"Direct Expenses", "Expense (Operating Expenses)"},
		{"Unmapped Group", "Account Group: Unmapped Group"},
	}
	for _, tc := range cases {
		if got := classifyAccount(tc.group); got != tc.want {
			t.Errorf("classifyAccount(%q) = %q, want %q", tc.group, got, tc.want)
		}
	}
}
