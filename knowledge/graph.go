// Package knowledge mirrors indexed documents into Neo4j for
// relationship-level insights. The graph is optional: a nil *Graph is a
// valid no-op dependency.
package knowledge

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Graph struct {
	driver neo4j.DriverWithContext
	logger *log.Logger
}

// Document is the node payload synced at ingest time.
type Document struct {
	ID         string
	OwnerID    string
	Title      string
	ChunkCount int
}

// Insight is what the graph can add to a source attribution.
type Insight struct {
	ChunkCount int
}

func NewGraph(driver neo4j.DriverWithContext, logger *log.Logger) *Graph {
	if logger == nil {
		logger = log.Default()
	}
	return &Graph{driver: driver, logger: logger}
}

func (g *Graph) enabled() bool {
	return g != nil && g.driver != nil
}

// SyncDocument upserts the document node under its owner.
func (g *Graph) SyncDocument(ctx context.Context, doc Document) error {
	if !g.enabled() {
		return nil
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx,
			`MERGE (o:Owner {id: $owner_id})
			 MERGE (d:Document {id: $id})
			 SET d.title = $title, d.chunk_count = $chunk_count
			 MERGE (o)-[:OWNS]->(d)`,
			map[string]any{
				"id":          doc.ID,
				"owner_id":    doc.OwnerID,
				"title":       doc.Title,
				"chunk_count": doc.ChunkCount,
			})
	})
	if err != nil {
		return fmt.Errorf("sync document node: %w", err)
	}
	return nil
}

// DeleteDocument removes the document node and its relationships.
func (g *Graph) DeleteDocument(ctx context.Context, documentID string) error {
	if !g.enabled() {
		return nil
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx,
			`MATCH (d:Document {id: $id}) DETACH DELETE d`,
			map[string]any{"id": documentID})
	})
	if err != nil {
		return fmt.Errorf("delete document node: %w", err)
	}
	return nil
}

// DocumentInsights returns per-document insights for the given ids.
// Missing documents are simply absent from the result.
func (g *Graph) DocumentInsights(ctx context.Context, documentIDs []string) (map[string]Insight, error) {
	if !g.enabled() || len(documentIDs) == 0 {
		return nil, nil
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			`MATCH (d:Document) WHERE d.id IN $ids
			 RETURN d.id AS id, d.chunk_count AS chunk_count`,
			map[string]any{"ids": documentIDs})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("query document insights: %w", err)
	}

	insights := make(map[string]Insight)
	for _, record := range records.([]*neo4j.Record) {
		id, _ := record.Get("id")
		count, _ := record.Get("chunk_count")

		idStr, ok := id.(string)
		if !ok {
			continue
		}
		countInt, _ := count.(int64)
		insights[idStr] = Insight{ChunkCount: int(countInt)}
	}

	return insights, nil
}
