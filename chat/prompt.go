package chat

import (
	"fmt"
	"strings"
	"time"
)

// PromptMode is determined purely by which context blocks are present.
type PromptMode int

const (
	ModeGeneral PromptMode = iota
	ModeDocumentOnly
	ModeExternalOnly
	ModeHybrid
)

func (m PromptMode) String() string {
	switch m {
	case ModeHybrid:
		return "hybrid"
	case ModeExternalOnly:
		return "external_only"
	case ModeDocumentOnly:
		return "document_only"
	default:
		return "general"
	}
}

func SelectMode(externalBlock, documentBlock string) PromptMode {
	hasExternal := strings.TrimSpace(externalBlock) != ""
	hasDocuments := strings.TrimSpace(documentBlock) != ""

	switch {
	case hasExternal && hasDocuments:
		return ModeHybrid
	case hasExternal:
		return ModeExternalOnly
	case hasDocuments:
		return ModeDocumentOnly
	default:
		return ModeGeneral
	}
}

// PromptInput carries everything Compose needs. Compose is pure: no
// clocks, no I/O.
type PromptInput struct {
	Query         string
	ExternalBlock string
	DocumentBlock string
	ChunkCount    int
	Complexity    Complexity
	ChartType     string
	Now           time.Time
}

const masterPreamble = `You are a financial and business intelligence assistant for an organization running Tally ERP.

Data source priority, highest authority first:
1. Live Tally ERP data (current financial state)
2. Retrieved knowledge-base document excerpts
3. General business knowledge (background only)

Operational rules:
- Extract exact figures from the provided context; never approximate when precise data exists.
- Cite specific sources: ledger names for ERP data, chunk references for documents.
- Format currency amounts in prose as Indian Rupees, e.g. ₹45,000.00.
- Never confuse opening balances with closing balances.
- Structure answers as: direct answer, detailed breakdown with citations, then insights and recommendations.`

const chartTrailer = `Chart formatting:
When the answer contains a numeric comparison or trend, also list the series as plain "Label: value" lines, one per line, using bare numbers without currency symbols or thousand separators (for example "North: 45000"). Keep ₹-formatted numbers in the explanatory prose. Preferred chart type for this answer: %s.`

// Compose renders the full prompt for the selected mode. The switch is
// exhaustive over PromptMode.
func Compose(in PromptInput) string {
	var body string

	switch SelectMode(in.ExternalBlock, in.DocumentBlock) {
	case ModeHybrid:
		body = fmt.Sprintf(`HYBRID ANALYSIS MODE. Two context layers follow; draw on BOTH to answer. The data you need is inside this prompt, so never reply that you lack access to it.

LAYER 1 - LIVE TALLY ERP DATA:

%s

LAYER 2 - KNOWLEDGE BASE DOCUMENTS:

%s

Answer using exact figures and names from both layers, attributing each fact to its layer.`, in.ExternalBlock, in.DocumentBlock)

	case ModeExternalOnly:
		body = fmt.Sprintf(`LIVE TALLY ERP DATA MODE. The complete ledger export follows; use it to answer. Never reply that you cannot access Tally - the data is below.

%s

Instructions:
- Count, list and quote ledgers directly from the data above.
- Report balances exactly as shown, including opening balance, closing balance and net change.
- When asked about a specific ledger, locate it by name and quote its figures.
- Data fetched at %s.`, in.ExternalBlock, in.Now.Format("2006-01-02 15:04:05"))

	case ModeDocumentOnly:
		body = fmt.Sprintf(`KNOWLEDGE BASE MODE. %d retrieved document excerpts follow (query complexity: %s).

%s

Instructions:
- Use only information from the excerpts above; never fabricate facts that are not present.
- Attribute every claim to its excerpt, e.g. "According to document chunk 2".
- Synthesize across excerpts when they cover different aspects of the question.
- If excerpts contradict each other, say so explicitly.
- State clearly when the excerpts do not contain the requested information.`, in.ChunkCount, in.Complexity, in.DocumentBlock)

	case ModeGeneral:
		body = `GENERAL CONSULTATION MODE. No company-specific data is available for this query, so answer from general business and financial knowledge.

Instructions:
- Give a clear, well-structured answer with practical examples.
- Distinguish general principles from advice that would need company data.
- Where company data would sharpen the answer, suggest uploading relevant documents or connecting the Tally ERP system.`
	}

	chartType := in.ChartType
	if chartType == "" {
		chartType = "bar"
	}

	return masterPreamble + "\n\n" + body +
		fmt.Sprintf("\n\nUSER QUERY: %s\n\n", in.Query) +
		fmt.Sprintf(chartTrailer, chartType)
}
