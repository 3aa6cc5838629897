package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hr-engine/internal/chatbot"
	"hr-engine/internal/config"
	"hr-engine/internal/document"
	"hr-engine/internal/embedding"
	"hr-engine/internal/llm"
	"hr-engine/internal/logger"

	"go.uber.org/zap"
)

// build_index walks a directory of policy documents and writes a fresh index
// snapshot, so the API can start with a warm corpus.
func main() {
	var dir string
	var out string
	flag.StringVar(&dir, "dir", "./policies", "Directory of policy documents (PDF, DOCX, TXT)")
	flag.StringVar(&out, "out", "", "Snapshot output path (defaults to INDEX_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if out == "" {
		out = cfg.IndexPath
	}

	zl, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	embedOpts := []embedding.Option{embedding.WithLogger(zl)}
	if cfg.EmbeddingEndpoint != "" {
		embedOpts = append(embedOpts, embedding.WithEndpoint(cfg.EmbeddingEndpoint))
	}
	embedder := embedding.NewService(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, embedOpts...)
	llmSvc := llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel, zl)

	svc, err := chatbot.NewService(embedder, llmSvc, chatbot.Config{
		ChunkSize:     cfg.ChunkSize,
		ChunkOverlap:  cfg.ChunkOverlap,
		TopK:          cfg.TopK,
		MinSimilarity: cfg.MinSimilarity,
		Dimension:     cfg.EmbeddingDimension,
	}, zl)
	if err != nil {
		zl.Fatal("failed to initialize chatbot service", zap.Error(err))
	}

	parser := document.NewParser(cfg.UploadsDir)
	ctx := context.Background()
	start := time.Now()
	indexed := 0

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".pdf" && ext != ".docx" && ext != ".doc" && ext != ".txt" {
			return nil
		}

		doc, err := parser.ParsePath(path)
		if err != nil {
			zl.Warn("skipping unparseable document", zap.String("path", path), zap.Error(err))
			return nil
		}

		stored, err := svc.AddDocument(ctx, doc.Filename, doc.Text)
		if err != nil {
			zl.Error("failed to index document", zap.String("path", path), zap.Error(err))
			return nil
		}
		zl.Info("document indexed", zap.String("path", path), zap.Int("units", stored))
		indexed++
		return nil
	})
	if err != nil {
		zl.Fatal("walk failed", zap.String("dir", dir), zap.Error(err))
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		zl.Fatal("failed to create output directory", zap.Error(err))
	}
	if err := svc.SaveIndex(out); err != nil {
		zl.Fatal("failed to save snapshot", zap.String("path", out), zap.Error(err))
	}

	zl.Info("index build complete",
		zap.Int("documents", indexed),
		zap.Int("units", svc.IndexSize()),
		zap.String("snapshot", out),
		zap.Duration("took", time.Since(start)))
}
