package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"kb-ingest/internal/app"
	"kb-ingest/internal/pipeline"
	"kb-ingest/internal/queue"
	"kb-ingest/internal/store"
)

// batch ingests a directory tree of documents in one pass: every allowed
// file is chunked, persisted, and queued for embedding.
func main() {
	dir := flag.String("dir", ".", "directory to ingest recursively")
	source := flag.String("source", "", "source label stored with each document (default from BATCH_SOURCE)")
	flag.Parse()

	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if *source == "" {
		*source = deps.Config.BatchSource
	}

	ctx := context.Background()
	summary, err := deps.Processor.ProcessDir(ctx, *dir, *source)
	if err != nil {
		deps.Log.Error("batch walk failed", "dir", *dir, "err", err)
		os.Exit(1)
	}

	persisted := 0
	for _, res := range summary.Results {
		if res.Err != nil {
			deps.Log.Warn("skipping failed document", "path", res.Path, "err", res.Err)
			continue
		}
		if err := persist(ctx, deps, *source, res); err != nil {
			deps.Log.Error("failed to persist document", "path", res.Path, "err", err)
			continue
		}
		persisted++
	}

	deps.Log.Info("batch ingestion finished",
		"dir", *dir,
		"files", len(summary.Results),
		"persisted", persisted,
		"failed", summary.Failed,
		"chunks", summary.TotalChunks,
	)
}

func persist(ctx context.Context, deps app.Deps, source string, res pipeline.Result) error {
	doc, err := deps.Store.CreateDocument(ctx, res.Filename, source)
	if err != nil {
		return err
	}
	if err := deps.Store.SetFileMeta(ctx, doc.ID, res.File); err != nil {
		return err
	}

	chunks := make([]store.Chunk, len(res.Records))
	for i, rec := range res.Records {
		chunks[i] = store.Chunk{
			DocID:       rec.Chunk.DocID,
			ChunkNumber: rec.Chunk.ChunkNumber,
			Section:     rec.Chunk.Section,
			Text:        rec.Text,
			TokenCount:  rec.Chunk.ChunkLength,
		}
	}
	if _, err := deps.Store.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return err
	}

	if len(chunks) == 0 {
		return deps.Store.UpdateDocumentStatus(ctx, doc.ID, store.StatusReady)
	}

	body, err := json.Marshal(queue.EmbedPayload{DocumentID: doc.ID})
	if err != nil {
		return err
	}
	task := queue.Task{Type: queue.TaskTypeEmbed, Payload: body}
	return queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond)
}
