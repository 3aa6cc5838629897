package api

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IndexJob is one policy document waiting to be chunked and indexed.
type IndexJob struct {
	SourceID  string
	Text      string
	Timestamp time.Time
}

// StartBackgroundWorkers launches the indexing worker. Uploads return as soon
// as the text is extracted; embedding happens here.
func (a *API) StartBackgroundWorkers() {
	go a.indexWorker()
	a.logger.Info("background workers started")
}

func (a *API) indexWorker() {
	for job := range a.indexQueue {
		ctx := context.Background()

		stored, err := a.chatbot.AddDocument(ctx, job.SourceID, job.Text)
		if err != nil {
			a.logger.Error("background indexing failed",
				zap.String("source_id", job.SourceID), zap.Error(err))
			continue
		}

		if err := a.chatbot.SaveIndex(a.cfg.IndexPath); err != nil {
			a.logger.Warn("failed to save index snapshot",
				zap.String("path", a.cfg.IndexPath), zap.Error(err))
		}

		a.logger.Info("document indexed in background",
			zap.String("source_id", job.SourceID),
			zap.Int("units", stored),
			zap.Duration("queued_for", time.Since(job.Timestamp)))
	}
}

// QueueIndexJob enqueues a document for background indexing. Non-blocking; a
// full queue drops the job and the caller is told to retry.
func (a *API) QueueIndexJob(sourceID, text string) bool {
	job := IndexJob{SourceID: sourceID, Text: text, Timestamp: time.Now()}
	select {
	case a.indexQueue <- job:
		a.logger.Info("queued indexing job", zap.String("source_id", sourceID))
		return true
	default:
		a.logger.Warn("index queue full, dropping job", zap.String("source_id", sourceID))
		return false
	}
}
