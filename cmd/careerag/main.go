package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"careerag/internal/assembler"
	"careerag/internal/chunker"
	"careerag/internal/classifier"
	"careerag/internal/config"
	"careerag/internal/domain"
	"careerag/internal/embedding"
	"careerag/internal/extractor"
	"careerag/internal/generator"
	"careerag/internal/index"
	"careerag/internal/logger"
	"careerag/internal/service"
	"careerag/internal/session"
	"careerag/internal/tui"
	"careerag/internal/vectorstore"
	"careerag/internal/vectorstore/memory"
	"careerag/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath string
		resume  string
		ask     string
		stats   bool
		clear   bool
		debug   bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/careerag/config.yaml if not provided)")
	flag.StringVar(&resume, "resume", "", "Path to a resume .txt file to ingest (replaces any previous resume)")
	flag.StringVar(&ask, "ask", "", "Ask a single question and print the answer instead of starting the chat")
	flag.BoolVar(&stats, "stats", false, "Print index statistics and exit")
	flag.BoolVar(&clear, "clear", false, "Remove all indexed documents and exit")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()
	postings := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(false, debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Assemble components
	emb, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
		BaseURL:   cfg.OpenAI.BaseURL,
		APIKeyEnv: cfg.OpenAI.APIKeyEnv,
		Model:     cfg.OpenAI.EmbeddingModel,
		Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	var st vectorstore.Storage
	switch cfg.Store.Type {
	case "memory":
		st = memory.NewStorage()
	case "sqlite", "":
		st, err = sqlite.NewStorage(cfg.Store.Path, cfg.Store.Collection)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
	default:
		log.Fatalf("unknown vector store: %s", cfg.Store.Type)
	}
	defer func() { _ = st.Close() }()

	ix := index.New(st, emb, zl)
	ctx := context.Background()

	if clear {
		n, err := ix.Clear(ctx)
		if err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		fmt.Printf("Removed %d chunks.\n", n)
		return
	}

	ext := extractor.New()
	ch := chunker.NewRecursive(cfg.Chunker.ChunkSize, *cfg.Chunker.ChunkOverlap)

	if resume != "" {
		if err := ingest(ctx, ext, ch, ix, resume, domain.DocTypeResume); err != nil {
			log.Fatalf("resume ingest failed: %v", err)
		}
	}
	for _, p := range postings {
		if err := ingest(ctx, ext, ch, ix, p, domain.DocTypeJobPosting); err != nil {
			log.Fatalf("job posting ingest failed: %v", err)
		}
	}

	s, err := ix.Stats(ctx)
	if err != nil {
		log.Fatalf("stats failed: %v", err)
	}
	if stats {
		printStats(s)
		return
	}
	if s.TotalChunks == 0 {
		fmt.Println("Usage: careerag [--config=config.yaml] --resume=resume.txt posting1.txt [posting2.txt ...]")
		os.Exit(1)
	}

	gen, err := generator.NewOpenAIClient(generator.OpenAIConfig{
		BaseURL:   cfg.OpenAI.BaseURL,
		APIKeyEnv: cfg.OpenAI.APIKeyEnv,
		Model:     cfg.OpenAI.LLMModel,
		Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}

	svc := service.NewRAGService(
		ix,
		classifier.New(cfg.RAG.ComparisonPhrases...),
		session.New(cfg.RAG.MaxHistory),
		assembler.New(cfg.RAG.MaxHistory),
		gen,
		cfg.RAG.QuestionTopK,
		zl,
	)

	if ask != "" {
		answer, err := svc.Ask(ctx, ask)
		if err != nil {
			log.Fatalf("ask failed: %v", err)
		}
		fmt.Println(answer.Text)
		for _, src := range answer.Sources {
			fmt.Printf("  - %s (%s)\n", src.Document, src.Type)
		}
		return
	}

	m := tui.New(svc, summarize(s))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		zl.Error("tui exited", zap.Error(err))
		os.Exit(1)
	}
}

func ingest(ctx context.Context, ext *extractor.Extractor, ch *chunker.Recursive, ix *index.Index, path string, docType domain.DocType) error {
	doc, err := ext.ProcessFile(path, docType)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	chunks, err := ch.Chunk(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	n, err := ix.Insert(ctx, chunks)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Printf("Indexed %s (%s, %d chunks)\n", doc.Name, docType, n)
	return nil
}

func summarize(s *domain.Stats) string {
	parts := []string{fmt.Sprintf("%d chunks indexed", s.TotalChunks)}
	if s.ResumeName != "" {
		parts = append(parts, "resume: "+s.ResumeName)
	}
	if len(s.JobPostings) > 0 {
		parts = append(parts, fmt.Sprintf("%d job postings", len(s.JobPostings)))
	}
	return strings.Join(parts, " | ")
}

func printStats(s *domain.Stats) {
	fmt.Printf("Total chunks:       %d\n", s.TotalChunks)
	fmt.Printf("Resume chunks:      %d\n", s.ResumeChunks)
	fmt.Printf("Job posting chunks: %d\n", s.JobPostingChunks)
	if s.ResumeName != "" {
		fmt.Printf("Resume:             %s\n", s.ResumeName)
	}
	for _, j := range s.JobPostings {
		fmt.Printf("Job posting:        %s\n", j)
	}
}
