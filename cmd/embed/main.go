package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"kb-ingest/internal/app"
	"kb-ingest/internal/httputil"
	"kb-ingest/internal/queue"
	"kb-ingest/internal/store"
)

func main() {
	deps, err := app.BuildEmbed()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("embed worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeEmbed, func(ctx context.Context, task queue.Task) error {
			var payload queue.EmbedPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleEmbed(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.RunHealthServer(deps.Log, deps.Config.Port, "embed")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("embed service stopped", "err", err)
	}
}

func handleEmbed(ctx context.Context, deps app.Deps, payload queue.EmbedPayload) error {
	doc, err := deps.Store.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	chunks, err := deps.Store.ListChunks(ctx, payload.DocumentID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		// Enrich chunk with document context for better embeddings
		texts[i] = fmt.Sprintf("Document: %s\n\n%s", doc.Filename, c.Text)
	}
	vectors, err := deps.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	embs := make([]store.Embedding, len(chunks))
	for i, c := range chunks {
		embs[i] = store.Embedding{
			ChunkID: c.ID,
			Vector:  vectors[i],
			Model:   deps.Config.EmbeddingModel,
		}
	}
	if err := deps.Store.SaveEmbeddings(ctx, embs); err != nil {
		return err
	}

	// Mark document ready
	return deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady)
}
