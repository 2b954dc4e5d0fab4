package chat

import (
	"strings"
	"testing"
	"time"
)

func TestSelectModeCoversAllCombinations(t *testing.T) {
	cases := []struct {
		external, documents string
		want                PromptMode
	}{
		{"tally data", "doc data", ModeHybrid},
		{"tally data", "", ModeExternalOnly},
		{"", "doc data", ModeDocumentOnly},
		{"", "", ModeGeneral},
		{"  \n ", " \t", ModeGeneral},
	}

	for _, tc := range cases {
		if got := SelectMode(tc.external, tc.documents); got != tc.want {
			t.Errorf("SelectMode(%q, %q) = %v, want %v", tc.external, tc.documents, got, tc.want)
		}
	}
}

func TestComposeInterpolatesBlocks(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	hybrid := Compose(PromptInput{
		Query:         "compare cash and bank balances",
		ExternalBlock: "LEDGER-DATA-MARKER",
		DocumentBlock: "DOCUMENT-CHUNK-MARKER",
		ChunkCount:    3,
		Complexity:    ComplexityHigh,
		Now:           now,
	})
	for _, want := range []string{"LEDGER-DATA-MARKER", "DOCUMENT-CHUNK-MARKER", "compare cash and bank balances", "LAYER 1", "LAYER 2"} {
		if !strings.Contains(hybrid, want) {
			t.Errorf("hybrid prompt missing %q", want)
		}
	}

	external := Compose(PromptInput{
		Query:         "list all ledgers",
		ExternalBlock: "LEDGER-DATA-MARKER",
		Now:           now,
	})
	if !strings.Contains(external, "LEDGER-DATA-MARKER") {
		t.Error("external prompt missing ledger block")
	}
	if !strings.Contains(external, "2025-04-01 12:00:00") {
		t.Error("external prompt missing fetch timestamp")
	}
	if strings.Contains(external, "LAYER 2") {
		t.Error("external prompt should not mention a document layer")
	}

	docs := Compose(PromptInput{
		Query:         "what does the contract say",
		DocumentBlock: "DOCUMENT-CHUNK-MARKER",
		ChunkCount:    5,
		Now:           now,
	})
	if !strings.Contains(docs, "DOCUMENT-CHUNK-MARKER") {
		t.Error("document prompt missing chunk block")
	}
	if !strings.Contains(docs, "5 retrieved document excerpts") {
		t.Error("document prompt missing chunk count")
	}

	general := Compose(PromptInput{Query: "what is working capital", Now: now})
	if !strings.Contains(general, "GENERAL CONSULTATION MODE") {
		t.Error("expected general mode body")
	}
	if !strings.Contains(general, "what is working capital") {
		t.Error("general prompt missing query")
	}
}

func TestComposeAlwaysAppendsChartInstructions(t *testing.T) {
	for _, in := range []PromptInput{
		{Query: "q"},
		{Query: "q", ExternalBlock: "x"},
		{Query: "q", DocumentBlock: "d"},
		{Query: "q", ExternalBlock: "x", DocumentBlock: "d"},
	} {
		prompt := Compose(in)
		if !strings.Contains(prompt, "Chart formatting:") {
			t.Errorf("mode %v missing chart trailer", SelectMode(in.ExternalBlock, in.DocumentBlock))
		}
		if !strings.Contains(prompt, "bar") {
			t.Errorf("mode %v missing default chart type", SelectMode(in.ExternalBlock, in.DocumentBlock))
		}
	}
}
