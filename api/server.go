// Package api exposes the HTTP surface: document management, chat,
// conversation history and health checks.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/vraj1091/RAG/chat"
	"github.com/vraj1091/RAG/config"
	"github.com/vraj1091/RAG/extraction"
	"github.com/vraj1091/RAG/ingestion"
	"github.com/vraj1091/RAG/tally"
)

// Server wires the HTTP routes to the underlying services.
type Server struct {
	cfg     config.Config
	logger  *log.Logger
	handler http.Handler

	chat          *chat.Service
	ingester      *ingestion.Service
	conversations *chat.PostgresConversationStore
	ledgers       tally.Client
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type ingestRequest struct {
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Path    string `json:"path"`
}

type ingestResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

type reindexRequest struct {
	DocumentID string `json:"document_id"`
}

type deleteRequest struct {
	DocumentID string `json:"document_id"`
}

type chatRequest struct {
	OwnerID        string `json:"owner_id"`
	ConversationID string `json:"conversation_id"`
	Question       string `json:"question"`
	Mode           string `json:"mode"`
}

type chatResponse struct {
	Answer          string        `json:"answer"`
	ConversationID  string        `json:"conversation_id"`
	Sources         []chat.Source `json:"sources,omitempty"`
	Charts          []chat.Chart  `json:"charts,omitempty"`
	ContextUsed     bool          `json:"context_used"`
	ChunksRetrieved int           `json:"chunks_retrieved"`
}

type deleteConversationRequest struct {
	OwnerID        string `json:"owner_id"`
	ConversationID string `json:"conversation_id"`
}

func New(cfg config.Config, logger *log.Logger, chatSvc *chat.Service, ingester *ingestion.Service, conversations *chat.PostgresConversationStore, ledgers tally.Client) *Server {
	if logger == nil {
		logger = log.Default()
	}
	server := &Server{
		cfg:           cfg,
		logger:        logger,
		chat:          chatSvc,
		ingester:      ingester,
		conversations: conversations,
		ledgers:       ledgers,
	}
	server.handler = server.routes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/documents", s.handleIngest)
	mux.HandleFunc("/v1/documents/reindex", s.handleReindex)
	mux.HandleFunc("/v1/documents/delete", s.handleDeleteDocument)
	mux.HandleFunc("/v1/chat", s.handleChat)
	mux.HandleFunc("/v1/conversations", s.handleConversations)
	mux.HandleFunc("/v1/conversations/messages", s.handleMessages)
	mux.HandleFunc("/v1/conversations/delete", s.handleDeleteConversation)
	mux.HandleFunc("/v1/tally/health", s.handleTallyHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("owner_id must be a uuid"))
		return
	}

	text := req.Text
	if text == "" && req.Path != "" {
		text, err = extraction.Extract(req.Path)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("extract %s: %w", req.Path, err))
			return
		}
	}
	if text == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("text or path is required"))
		return
	}

	doc := ingestion.Document{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      req.Title,
		SourcePath: req.Path,
		Text:       text,
	}

	chunks, err := s.ingester.Ingest(r.Context(), doc)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("ingestion failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, ingestResponse{DocumentID: doc.ID.String(), Chunks: chunks})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req reindexRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("document_id must be a uuid"))
		return
	}

	chunks, err := s.ingester.Reindex(r.Context(), documentID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("reindex failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, ingestResponse{DocumentID: documentID.String(), Chunks: chunks})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("document_id must be a uuid"))
		return
	}

	if err := s.ingester.Delete(r.Context(), documentID); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("delete failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "document deleted"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("owner_id must be a uuid"))
		return
	}

	var conversationID uuid.UUID
	if req.ConversationID != "" {
		conversationID, err = uuid.Parse(req.ConversationID)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("conversation_id must be a uuid"))
			return
		}
	}

	resp, err := s.chat.Answer(r.Context(), chat.Request{
		OwnerID:        ownerID,
		ConversationID: conversationID,
		Query:          req.Question,
		Mode:           req.Mode,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("chat failed: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Answer:          resp.Answer,
		ConversationID:  resp.ConversationID.String(),
		Sources:         resp.Sources,
		Charts:          resp.Charts,
		ContextUsed:     resp.ContextUsed,
		ChunksRetrieved: resp.ChunksRetrieved,
	})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("owner_id must be a uuid"))
		return
	}

	conversations, err := s.conversations.ListConversations(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list conversations: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("owner_id must be a uuid"))
		return
	}
	conversationID, err := uuid.Parse(r.URL.Query().Get("conversation_id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("conversation_id must be a uuid"))
		return
	}

	messages, err := s.conversations.Messages(r.Context(), ownerID, conversationID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list messages: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req deleteConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("owner_id must be a uuid"))
		return
	}
	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("conversation_id must be a uuid"))
		return
	}

	if err := s.conversations.DeleteConversation(r.Context(), ownerID, conversationID); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("delete conversation: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "conversation deleted"})
}

func (s *Server) handleTallyHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	if s.ledgers == nil {
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("tally integration not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Tally.Timeout)
	defer cancel()

	snap, err := s.ledgers.Ledgers(ctx)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("tally unreachable: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("tally reachable, %d ledgers", len(snap.Ledgers)),
	})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
