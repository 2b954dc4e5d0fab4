package chat

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vraj1091/RAG/knowledge"
	"github.com/vraj1091/RAG/llm"
	"github.com/vraj1091/RAG/tally"
)

const (
	// ModeRAG runs the full retrieval pipeline; ModeGeneralKnowledge
	// skips retrieval and answers from the model alone.
	ModeRAG              = "rag"
	ModeGeneralKnowledge = "general"

	maxDocumentSources = 8
	previewLength      = 200
)

const noContextAnswer = `**No Information Available**

I don't have relevant information in the knowledge base or access to live Tally ERP data to answer this question.

To get better results:
1. Upload relevant documents (PDF, TXT, Markdown, CSV)
2. Ensure Tally ERP is connected and running
3. Verify the Tally XML service is reachable on its configured port

Try rephrasing your question or upload supporting documents.`

const degradedAnswer = `I was unable to generate a response in time. The retrieved context is intact, so please retry in a moment or simplify the question.`

// Request is one user turn.
type Request struct {
	OwnerID        uuid.UUID
	ConversationID uuid.UUID
	Query          string
	Mode           string
}

type ServiceOptions struct {
	TallyTimeout time.Duration
	LLMTimeout   time.Duration
	FormatLimit  int
}

type Service struct {
	retriever  *Retriever
	generator  llm.Client
	ledgers    tally.Client
	history    ConversationStore
	graph      *knowledge.Graph
	classifier Classifier
	logger     *log.Logger
	opts       ServiceOptions
}

func NewService(retriever *Retriever, generator llm.Client, ledgers tally.Client, history ConversationStore, graph *knowledge.Graph, classifier Classifier, logger *log.Logger, opts ServiceOptions) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if opts.TallyTimeout <= 0 {
		opts.TallyTimeout = 10 * time.Second
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 2 * time.Minute
	}
	if opts.FormatLimit <= 0 {
		opts.FormatLimit = tally.DefaultFormatLimit
	}
	return &Service{
		retriever:  retriever,
		generator:  generator,
		ledgers:    ledgers,
		history:    history,
		graph:      graph,
		classifier: classifier,
		logger:     logger,
		opts:       opts,
	}
}

// Answer runs one query through the pipeline and assembles the response.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, fmt.Errorf("query must not be empty")
	}
	if req.OwnerID == uuid.Nil {
		return Response{}, fmt.Errorf("owner id must not be empty")
	}

	conversationID := s.ensureConversation(ctx, req, query)
	s.persistTurn(ctx, conversationID, llm.RoleUser, query, nil)

	if req.Mode == ModeGeneralKnowledge {
		return s.answerGeneral(ctx, query, conversationID)
	}

	complexity := s.classifier.Classify(query)

	var chunks []ChunkResult
	var snapshot *tally.Snapshot

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		results, err := s.retriever.Retrieve(groupCtx, req.OwnerID, query, complexity)
		if err != nil {
			s.logger.Printf("chat: retrieval failed: %v", err)
			return nil
		}
		chunks = results
		return nil
	})
	if s.ledgers != nil && IsFinanceQuery(query) {
		group.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, s.opts.TallyTimeout)
			defer cancel()

			snap, err := s.ledgers.Ledgers(fetchCtx)
			if err != nil {
				s.logger.Printf("chat: tally fetch failed: %v", err)
				return nil
			}
			snapshot = snap
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Response{}, err
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	// Fast path: simple ledger questions are answered straight from the
	// snapshot, skipping the generative model entirely.
	if answer, ok := ResolveBypass(query, snapshot); ok {
		response := Response{
			Answer: answer,
			Sources: []Source{{
				Type:    SourceTallyFastPath,
				Detail:  fmt.Sprintf("Resolved instantly from %d live ledgers", len(snapshot.Ledgers)),
				Preview: preview(answer),
			}},
			ContextUsed:    true,
			ConversationID: conversationID,
		}
		s.persistTurn(ctx, conversationID, llm.RoleAssistant, response.Answer, response.Sources)
		return response, nil
	}

	externalBlock := tally.FormatSnapshot(snapshot, s.opts.FormatLimit)
	documentBlock := BuildDocumentBlock(chunks, TruncateLimit(complexity))

	if externalBlock == "" && documentBlock == "" {
		response := Response{
			Answer:         noContextAnswer,
			ContextUsed:    false,
			ConversationID: conversationID,
		}
		s.persistTurn(ctx, conversationID, llm.RoleAssistant, response.Answer, nil)
		return response, nil
	}

	prompt := Compose(PromptInput{
		Query:         query,
		ExternalBlock: externalBlock,
		DocumentBlock: documentBlock,
		ChunkCount:    len(chunks),
		Complexity:    complexity,
		ChartType:     DetectChartType(query),
		Now:           time.Now(),
	})

	answer := s.generate(ctx, prompt)

	response := Response{
		Answer:          answer,
		Sources:         s.buildSources(ctx, snapshot, chunks),
		Charts:          BuildCharts(query, answer),
		ContextUsed:     true,
		ChunksRetrieved: len(chunks),
		ConversationID:  conversationID,
	}
	s.persistTurn(ctx, conversationID, llm.RoleAssistant, response.Answer, response.Sources)
	return response, nil
}

func (s *Service) answerGeneral(ctx context.Context, query string, conversationID uuid.UUID) (Response, error) {
	prompt := Compose(PromptInput{
		Query:     query,
		ChartType: DetectChartType(query),
		Now:       time.Now(),
	})

	answer := s.generate(ctx, prompt)

	response := Response{
		Answer:         answer,
		Charts:         BuildCharts(query, answer),
		ConversationID: conversationID,
	}
	s.persistTurn(ctx, conversationID, llm.RoleAssistant, response.Answer, nil)
	return response, nil
}

// generate calls the model under the long timeout. Failures degrade to
// an explicit user-visible message rather than an error.
func (s *Service) generate(ctx context.Context, prompt string) string {
	genCtx, cancel := context.WithTimeout(ctx, s.opts.LLMTimeout)
	defer cancel()

	answer, err := s.generator.Generate(genCtx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		s.logger.Printf("chat: generation failed: %v", err)
		return degradedAnswer
	}
	return answer
}

// buildSources orders attributions: live external data first, then the
// top document chunks.
func (s *Service) buildSources(ctx context.Context, snapshot *tally.Snapshot, chunks []ChunkResult) []Source {
	var sources []Source

	if snapshot != nil && len(snapshot.Ledgers) > 0 {
		sources = append(sources, Source{
			Type:   SourceTallyLive,
			Detail: fmt.Sprintf("Live Tally ERP data: %d ledger accounts", len(snapshot.Ledgers)),
		})
	}

	limit := len(chunks)
	if limit > maxDocumentSources {
		limit = maxDocumentSources
	}

	insights := s.documentInsights(ctx, chunks[:limit])
	for _, chunk := range chunks[:limit] {
		source := Source{
			Type:       SourceDocument,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.ChunkIndex,
			Similarity: roundSimilarity(1 - chunk.Distance),
			Preview:    preview(chunk.Content),
		}
		if insight, ok := insights[chunk.DocumentID]; ok {
			source.Detail = fmt.Sprintf("Document indexed with %d chunks", insight.ChunkCount)
		}
		sources = append(sources, source)
	}

	return sources
}

func (s *Service) documentInsights(ctx context.Context, chunks []ChunkResult) map[string]knowledge.Insight {
	if len(chunks) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(chunks))
	var ids []string
	for _, chunk := range chunks {
		if !seen[chunk.DocumentID] {
			seen[chunk.DocumentID] = true
			ids = append(ids, chunk.DocumentID)
		}
	}

	insights, err := s.graph.DocumentInsights(ctx, ids)
	if err != nil {
		s.logger.Printf("chat: graph insights failed: %v", err)
		return nil
	}
	return insights
}

func (s *Service) ensureConversation(ctx context.Context, req Request, query string) uuid.UUID {
	if s.history == nil {
		return req.ConversationID
	}

	id, err := s.history.EnsureConversation(ctx, req.OwnerID, req.ConversationID, query)
	if err != nil {
		s.logger.Printf("chat: ensure conversation failed: %v", err)
		return req.ConversationID
	}
	return id
}

// persistTurn records a turn; persistence failure never fails the answer.
func (s *Service) persistTurn(ctx context.Context, conversationID uuid.UUID, role, content string, sources []Source) {
	if s.history == nil || conversationID == uuid.Nil {
		return
	}
	if err := s.history.AppendTurn(ctx, conversationID, role, content, sources); err != nil {
		s.logger.Printf("chat: persist %s turn failed: %v", role, err)
	}
}

func preview(text string) string {
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength] + "..."
}

func roundSimilarity(similarity float64) float64 {
	return math.Round(similarity*100) / 100
}
