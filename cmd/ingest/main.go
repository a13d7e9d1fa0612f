package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kb-ingest/internal/app"
	"kb-ingest/internal/httputil"
	"kb-ingest/internal/queue"
	"kb-ingest/internal/store"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("ingest worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeIngest, func(ctx context.Context, task queue.Task) error {
			var payload queue.IngestPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleIngest(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.RunHealthServer(deps.Log, deps.Config.Port, "ingest")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("ingest service stopped", "err", err)
	}
}

func handleIngest(ctx context.Context, deps app.Deps, payload queue.IngestPayload) error {
	res := deps.Processor.ProcessReader(
		bytes.NewReader(payload.Content), payload.Filename, int64(len(payload.Content)), payload.Source)
	if res.Err != nil {
		if err := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusFailed); err != nil {
			deps.Log.Error("failed to mark document failed", "document_id", payload.DocumentID, "err", err)
		}
		return res.Err
	}

	if err := deps.Store.SetFileMeta(ctx, payload.DocumentID, res.File); err != nil {
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
	if _, err := deps.Store.SaveChunks(ctx, payload.DocumentID, chunks); err != nil {
		return err
	}

	// Empty documents skip embedding and go straight to ready.
	if len(chunks) == 0 {
		return deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady)
	}

	body, err := json.Marshal(queue.EmbedPayload{DocumentID: payload.DocumentID})
	if err != nil {
		return err
	}
	task := queue.Task{Type: queue.TaskTypeEmbed, Payload: body, NotBefore: time.Now()}
	return queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond)
}
