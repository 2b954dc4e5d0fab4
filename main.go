package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vraj1091/RAG/api"
	"github.com/vraj1091/RAG/chat"
	"github.com/vraj1091/RAG/config"
	"github.com/vraj1091/RAG/database"
	"github.com/vraj1091/RAG/embeddings"
	"github.com/vraj1091/RAG/extraction"
	"github.com/vraj1091/RAG/ingestion"
	"github.com/vraj1091/RAG/knowledge"
	"github.com/vraj1091/RAG/llm"
	"github.com/vraj1091/RAG/tally"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("load .env: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "chat":
		chatCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// deps bundles everything the commands share.
type deps struct {
	graph    *knowledge.Graph
	ingester *ingestion.Service
	chat     *chat.Service
	history  *chat.PostgresConversationStore
	ledgers  tally.Client
}

func buildDeps(ctx context.Context, cfg config.Config, logger *log.Logger) (*deps, func(), error) {
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connection: %w", err)
	}

	if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	var driver neo4j.DriverWithContext
	var graph *knowledge.Graph
	if cfg.Neo4jEnable {
		driver, err = database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("neo4j connection: %w", err)
		}
		graph = knowledge.NewGraph(driver, logger)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("embedder setup: %w", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("llm setup: %w", err)
	}

	ledgers := tally.Client(tally.NewXMLClient(cfg.Tally))
	history := chat.NewPostgresConversationStore(pool)
	retriever := chat.NewRetriever(chat.NewPostgresVectorStore(pool), embedder)

	d := &deps{
		graph:    graph,
		ingester: ingestion.NewService(pool, graph, embedder, logger, cfg.Chunking),
		history:  history,
		ledgers:  ledgers,
		chat: chat.NewService(retriever, llmClient, ledgers, history, graph, chat.KeywordClassifier{}, logger, chat.ServiceOptions{
			TallyTimeout: cfg.Tally.Timeout,
			LLMTimeout:   cfg.LLM.Timeout,
		}),
	}

	cleanup := func() {
		pool.Close()
		if driver != nil {
			driver.Close(context.Background())
		}
	}
	return d, cleanup, nil
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.ListenAddr, "listen address")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer cleanup()

	server := api.New(cfg, logger, d.chat, d.ingester, d.history, d.ledgers)
	httpServer := &http.Server{Addr: *addr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	logger.Printf("listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("serve: %v", err)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	file := flags.String("file", "", "path to the document to ingest (.txt, .md, .pdf, .csv)")
	owner := flags.String("owner", "", "owner uuid the document belongs to")
	title := flags.String("title", "", "document title (defaults to the file name)")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	if *file == "" {
		logger.Fatal("ingest requires -file")
	}
	ownerID, err := uuid.Parse(*owner)
	if err != nil {
		logger.Fatalf("ingest requires -owner as a uuid: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer cleanup()

	text, err := extraction.Extract(*file)
	if err != nil {
		logger.Fatalf("extract %s: %v", *file, err)
	}

	docTitle := *title
	if docTitle == "" {
		docTitle = strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
	}

	doc := ingestion.Document{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      docTitle,
		SourcePath: *file,
		Text:       text,
	}

	chunks, err := d.ingester.Ingest(ctx, doc)
	if err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}

	logger.Printf("ingested %s as %s (%d chunks)", *file, doc.ID, chunks)
}

func chatCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	question := flags.String("question", "", "question to ask")
	owner := flags.String("owner", "", "owner uuid whose documents to search")
	mode := flags.String("mode", chat.ModeRAG, "answer mode: rag or general")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse chat flags: %v", err)
	}

	ownerID, err := uuid.Parse(*owner)
	if err != nil {
		logger.Fatalf("chat requires -owner as a uuid: %v", err)
	}

	if strings.TrimSpace(*question) == "" {
		fmt.Print("Enter your question: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*question = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatalf("read question: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer cleanup()

	resp, err := d.chat.Answer(ctx, chat.Request{
		OwnerID: ownerID,
		Query:   *question,
		Mode:    *mode,
	})
	if err != nil {
		logger.Fatalf("chat failed: %v", err)
	}

	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for idx, source := range resp.Sources {
			switch source.Type {
			case chat.SourceDocument:
				fmt.Printf("%d. document %s chunk %d (similarity %.2f)\n", idx+1, source.DocumentID, source.ChunkIndex, source.Similarity)
			default:
				fmt.Printf("%d. %s: %s\n", idx+1, source.Type, source.Detail)
			}
		}
	}
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	confirm := flags.Bool("confirm", false, "required to actually delete all indexed data")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	if !*confirm {
		logger.Fatal("clear requires -confirm")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pool.Close()

	for _, table := range []string{"messages", "conversations", "rag_chunks", "rag_documents"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			logger.Fatalf("clear %s: %v", table, err)
		}
	}

	if cfg.Neo4jEnable {
		driver, err := database.NewNeo4jDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPass)
		if err != nil {
			logger.Fatalf("neo4j connection: %v", err)
		}
		defer driver.Close(ctx)

		session := driver.NewSession(ctx, neo4j.SessionConfig{})
		defer session.Close(ctx)

		if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
			logger.Fatalf("clear neo4j: %v", err)
		}
	}

	logger.Print("all indexed data cleared")
}

func printUsage() {
	fmt.Println("usage: rag <command> [flags]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  serve   start the HTTP API")
	fmt.Println("  ingest  index a document for an owner")
	fmt.Println("  chat    ask a question from the command line")
	fmt.Println("  clear   delete all indexed data (requires -confirm)")
}
