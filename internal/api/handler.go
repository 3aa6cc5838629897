package api

import (
	"database/sql"
	"os"

	"hr-engine/internal/chatbot"
	"hr-engine/internal/config"
	"hr-engine/internal/document"
	"hr-engine/internal/embedding"
	"hr-engine/internal/llm"
	"hr-engine/internal/recruitment"
	"hr-engine/internal/screening"
	"hr-engine/internal/storage"

	"go.uber.org/zap"
)

// API wires the chatbot and screening pipelines to HTTP. Policy indexing runs
// on a background queue so uploads return fast.
type API struct {
	cfg        *config.Config
	parser     *document.Parser
	chatbot    *chatbot.Service
	recruiter  *recruitment.Engine
	runStore   *storage.RunStore
	indexQueue chan IndexJob
	logger     *zap.Logger
}

func NewAPI(cfg *config.Config, db *sql.DB, logger *zap.Logger) (*API, error) {
	embedOpts := []embedding.Option{embedding.WithLogger(logger)}
	if cfg.EmbeddingEndpoint != "" {
		embedOpts = append(embedOpts, embedding.WithEndpoint(cfg.EmbeddingEndpoint))
	}
	embedder := embedding.NewService(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, embedOpts...)

	llmSvc := llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel, logger)

	chatCfg := chatbot.Config{
		ChunkSize:     cfg.ChunkSize,
		ChunkOverlap:  cfg.ChunkOverlap,
		TopK:          cfg.TopK,
		MinSimilarity: cfg.MinSimilarity,
		Dimension:     cfg.EmbeddingDimension,
	}

	// With Postgres the policy corpus lives in pgvector and survives restarts
	// on its own. Without it the in-memory index restores from a snapshot.
	var chatbotSvc *chatbot.Service
	var err error
	if db != nil {
		pgIndex, perr := storage.NewPgVectorIndex(db, embedder, cfg.EmbeddingDimension, logger)
		if perr != nil {
			return nil, perr
		}
		chatbotSvc, err = chatbot.NewServiceWithCorpus(embedder, llmSvc, pgIndex, chatCfg, logger)
		if err != nil {
			return nil, err
		}
	} else {
		chatbotSvc, err = chatbot.NewService(embedder, llmSvc, chatCfg, logger)
		if err != nil {
			return nil, err
		}
		if _, serr := os.Stat(cfg.IndexPath); serr == nil {
			if lerr := chatbotSvc.LoadIndex(cfg.IndexPath); lerr != nil {
				logger.Warn("failed to load index snapshot, starting empty",
					zap.String("path", cfg.IndexPath), zap.Error(lerr))
			} else {
				logger.Info("index snapshot loaded",
					zap.String("path", cfg.IndexPath), zap.Int("units", chatbotSvc.IndexSize()))
			}
		}
	}

	scorer, err := screening.NewScorer(cfg.SemanticWeight, cfg.SkillWeight)
	if err != nil {
		return nil, err
	}
	recruiter, err := recruitment.NewEngine(embedder, llmSvc, llmSvc, scorer, cfg.MaxParallel, logger)
	if err != nil {
		return nil, err
	}

	var runStore *storage.RunStore
	if db != nil {
		runStore = storage.NewRunStore(db)
	}

	a := &API{
		cfg:        cfg,
		parser:     document.NewParser(cfg.UploadsDir),
		chatbot:    chatbotSvc,
		recruiter:  recruiter,
		runStore:   runStore,
		indexQueue: make(chan IndexJob, 50),
		logger:     logger,
	}
	a.StartBackgroundWorkers()
	return a, nil
}
