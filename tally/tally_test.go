package tally

import (
	"strings"
	"testing"
	"time"
)

func TestLedgerNetChange(t *testing.T) {
	ledger := Ledger{Name: "Cash", OpeningBalance: 1000, ClosingBalance: 1250}

	if got := ledger.NetChange(); got != 250 {
		t.Errorf("NetChange = %v, want 250", got)
	}
	if got := ledger.PercentChange(); got != 25 {
		t.Errorf("PercentChange = %v, want 25", got)
	}
	if got := ledger.Direction(); got != DirectionIncrease {
		t.Errorf("Direction = %v, want increase", got)
	}
}

func TestLedgerPercentChangeZeroOpening(t *testing.T) {
	ledger := Ledger{Name: "New Account", OpeningBalance: 0, ClosingBalance: 500}

	if got := ledger.PercentChange(); got != 0 {
		t.Errorf("PercentChange with zero opening = %v, want 0", got)
	}
	if got := ledger.Direction(); got != DirectionIncrease {
		t.Errorf("Direction = %v, want increase", got)
	}
}

func TestLedgerPercentChangeNegativeOpening(t *testing.T) {
	ledger := Ledger{Name: "Creditors", OpeningBalance: -1000, ClosingBalance: -500}

	if got := ledger.PercentChange(); got != 50 {
		t.Errorf("PercentChange = %v, want 50", got)
	}
}

func TestFormatSnapshotEmpty(t *testing.T) {
	if got := FormatSnapshot(nil, 50); got != "" {
		t.Errorf("nil snapshot rendered %q, want empty", got)
	}
	if got := FormatSnapshot(&Snapshot{Company: "Acme"}, 50); got != "" {
		t.Errorf("empty snapshot rendered %q, want empty", got)
	}
}

func TestFormatSnapshotLabels(t *testing.T) {
	snap := &Snapshot{
		Company:   "Acme Traders",
		FetchedAt: time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC),
		Ledgers: []Ledger{
			{Name: "Cash", Parent: "Cash-in-Hand", OpeningBalance: 1000, ClosingBalance: 1250},
		},
	}

	block := FormatSnapshot(snap, 50)
	for _, want := range []string{
		"Acme Traders",
		"Total Ledger Accounts: 1",
		"Ledger: Cash",
		"Group: Cash-in-Hand",
		"Opening Balance: ₹1,000.00",
		"Closing Balance: ₹1,250.00",
		"Net Change: +₹250.00 (25.0% increase)",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("snapshot block missing %q:\n%s", want, block)
		}
	}
}

func TestFormatSnapshotCap(t *testing.T) {
	snap := &Snapshot{FetchedAt: time.Now()}
	for i := 0; i < 60; i++ {
		snap.Ledgers = append(snap.Ledgers, Ledger{Name: "L", ClosingBalance: float64(i)})
	}

	block := FormatSnapshot(snap, 50)
	if !strings.Contains(block, "... and 10 more ledger accounts") {
		t.Errorf("expected overflow trailer in:\n%s", block)
	}
	if strings.Count(block, "Ledger: L") != 50 {
		t.Errorf("expected exactly 50 rendered ledgers, got %d", strings.Count(block, "Ledger: L"))
	}
}

func TestParseLedgersStripsCommas(t *testing.T) {
	payload := []byte(`<ENVELOPE><BODY><DATA><COLLECTION>
		<LEDGER NAME="HDFC Bank">
			<PARENT>Bank Accounts</PARENT>
			<OPENINGBALANCE>1,00,000.50</OPENINGBALANCE>
			<CLOSINGBALANCE>-2,500.00</CLOSINGBALANCE>
		</LEDGER>
	</COLLECTION></DATA></BODY></ENVELOPE>`)

	ledgers, err := parseLedgers(payload)
	if err != nil {
		t.Fatalf("parseLedgers returned error: %v", err)
	}
	if len(ledgers) != 1 {
		t.Fatalf("got %d ledgers, want 1", len(ledgers))
	}
	l := ledgers[0]
	if l.Name != "HDFC Bank" || l.Parent != "Bank Accounts" {
		t.Errorf("unexpected ledger identity: %+v", l)
	}
	if l.OpeningBalance != 100000.50 {
		t.Errorf("OpeningBalance = %v, want 100000.50", l.OpeningBalance)
	}
	if l.ClosingBalance != -2500 {
		t.Errorf("ClosingBalance = %v, want -2500", l.ClosingBalance)
	}
}

func TestParseLedgersRepairsBareAmpersand(t *testing.T) {
	payload := []byte(`<ENVELOPE><LEDGER NAME="Shah & Sons">
		<PARENT>Sundry Debtors</PARENT>
		<OPENINGBALANCE>10</OPENINGBALANCE>
		<CLOSINGBALANCE>20</CLOSINGBALANCE>
	</LEDGER></ENVELOPE>`)

	ledgers, err := parseLedgers(payload)
	if err != nil {
		t.Fatalf("parseLedgers returned error: %v", err)
	}
	if len(ledgers) != 1 || ledgers[0].Name != "Shah & Sons" {
		t.Fatalf("unexpected ledgers: %+v", ledgers)
	}
}
