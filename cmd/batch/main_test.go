package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"kb-ingest/internal/app"
	"kb-ingest/internal/docmeta"
	"kb-ingest/internal/pipeline"
	"kb-ingest/internal/queue"
	"kb-ingest/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue) app.Deps {
	return app.Deps{
		Store: st,
		Queue: q,
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func sampleResult() pipeline.Result {
	file := docmeta.FileMeta{Filename: "guide.md", Source: "docs", WordCount: 4}
	return pipeline.Result{
		Filename: "guide.md",
		File:     file,
		Records: []docmeta.Record{
			{
				Text:  "Intro [SEP] Some intro text.",
				Chunk: docmeta.ChunkMeta{DocID: "guide_1", ChunkNumber: 1, ChunkLength: 5, Section: "Intro"},
				File:  file,
			},
		},
	}
}

func TestPersist(t *testing.T) {
	docID := uuid.New()

	st := new(store.MockStore)
	q := new(queue.MockQueue)

	st.On("CreateDocument", mock.Anything, "guide.md", "docs").
		Return(store.Document{ID: docID}, nil).Once()
	st.On("SetFileMeta", mock.Anything, docID, mock.Anything).Return(nil).Once()
	st.On("SaveChunks", mock.Anything, docID, mock.MatchedBy(func(chunks []store.Chunk) bool {
		return len(chunks) == 1 && chunks[0].DocID == "guide_1" && chunks[0].Section == "Intro"
	})).Return([]store.Chunk{{ID: uuid.New()}}, nil).Once()
	q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
		return task.Type == queue.TaskTypeEmbed
	})).Return(nil).Once()

	err := persist(context.Background(), newTestDeps(st, q), "docs", sampleResult())
	if err != nil {
		t.Fatalf("persist() error = %v", err)
	}
	st.AssertExpectations(t)
	q.AssertExpectations(t)
}

func TestPersistEmptyDocumentSkipsEmbedding(t *testing.T) {
	docID := uuid.New()

	st := new(store.MockStore)
	q := new(queue.MockQueue)

	st.On("CreateDocument", mock.Anything, "blank.txt", "docs").
		Return(store.Document{ID: docID}, nil).Once()
	st.On("SetFileMeta", mock.Anything, docID, mock.Anything).Return(nil).Once()
	st.On("SaveChunks", mock.Anything, docID, mock.Anything).
		Return([]store.Chunk{}, nil).Once()
	st.On("UpdateDocumentStatus", mock.Anything, docID, store.StatusReady).
		Return(nil).Once()

	res := pipeline.Result{Filename: "blank.txt", File: docmeta.FileMeta{Filename: "blank.txt"}}
	if err := persist(context.Background(), newTestDeps(st, q), "docs", res); err != nil {
		t.Fatalf("persist() error = %v", err)
	}
	st.AssertExpectations(t)
	q.AssertExpectations(t)
}

func TestPersistStoreFailure(t *testing.T) {
	st := new(store.MockStore)
	st.On("CreateDocument", mock.Anything, "guide.md", "docs").
		Return(store.Document{}, errors.New("db down")).Once()

	err := persist(context.Background(), newTestDeps(st, new(queue.MockQueue)), "docs", sampleResult())
	if err == nil {
		t.Fatal("expected error from store failure")
	}
	st.AssertExpectations(t)
}
