package extraction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("quarterly revenue summary"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if text != "quarterly revenue summary" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractCSVKeepsHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgers.csv")
	csv := "Ledger,Balance\nCash,5000\nHDFC Bank,12000\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	for _, want := range []string{"Ledger: Cash", "Balance: 5000", "Ledger: HDFC Bank", "Balance: 12000"} {
		if !strings.Contains(text, want) {
			t.Errorf("csv text missing %q:\n%s", want, text)
		}
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	if _, err := Extract("report.xlsx"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
