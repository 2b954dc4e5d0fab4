package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationStore persists chat turns with their source attributions.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, ownerID, conversationID uuid.UUID, title string) (uuid.UUID, error)
	AppendTurn(ctx context.Context, conversationID uuid.UUID, role, content string, sources []Source) error
}

type Conversation struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StoredMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PostgresConversationStore struct {
	pool *pgxpool.Pool
}

var _ ConversationStore = (*PostgresConversationStore)(nil)

func NewPostgresConversationStore(pool *pgxpool.Pool) *PostgresConversationStore {
	return &PostgresConversationStore{pool: pool}
}

// EnsureConversation returns the existing conversation or creates one.
// A zero conversationID always creates.
func (s *PostgresConversationStore) EnsureConversation(ctx context.Context, ownerID, conversationID uuid.UUID, title string) (uuid.UUID, error) {
	if conversationID != uuid.Nil {
		var existing uuid.UUID
		err := s.pool.QueryRow(ctx,
			`SELECT id FROM conversations WHERE id = $1 AND owner_id = $2`,
			conversationID, ownerID,
		).Scan(&existing)
		if err == nil {
			return existing, nil
		}
	}

	id := uuid.New()
	if title == "" {
		title = "New Conversation"
	}
	if len(title) > 100 {
		title = title[:100]
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, owner_id, title) VALUES ($1, $2, $3)`,
		id, ownerID, title)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create conversation: %w", err)
	}
	return id, nil
}

func (s *PostgresConversationStore) AppendTurn(ctx context.Context, conversationID uuid.UUID, role, content string, sources []Source) error {
	var sourcesJSON []byte
	if len(sources) > 0 {
		data, err := json.Marshal(sources)
		if err != nil {
			return fmt.Errorf("marshal sources: %w", err)
		}
		sourcesJSON = data
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, sources) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), conversationID, role, content, sourcesJSON)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`,
		conversationID)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// ListConversations returns the owner's conversations, most recent first.
func (s *PostgresConversationStore) ListConversations(ctx context.Context, ownerID uuid.UUID) ([]Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM conversations WHERE owner_id = $1
		 ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// Messages returns the conversation history in chronological order.
func (s *PostgresConversationStore) Messages(ctx context.Context, ownerID, conversationID uuid.UUID) ([]StoredMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.role, m.content, m.sources, m.created_at
		 FROM messages m
		 JOIN conversations c ON c.id = m.conversation_id
		 WHERE m.conversation_id = $1 AND c.owner_id = $2
		 ORDER BY m.created_at`,
		conversationID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []StoredMessage
	for rows.Next() {
		var m StoredMessage
		var sourcesJSON []byte
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &sourcesJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		if len(sourcesJSON) > 0 {
			if err := json.Unmarshal(sourcesJSON, &m.Sources); err != nil {
				return nil, fmt.Errorf("unmarshal message sources: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteConversation removes a conversation and its messages.
func (s *PostgresConversationStore) DeleteConversation(ctx context.Context, ownerID, conversationID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE id = $1 AND owner_id = $2`,
		conversationID, ownerID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
