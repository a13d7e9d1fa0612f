package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"kb-ingest/internal/app"
	"kb-ingest/internal/config"
	"kb-ingest/internal/pipeline"
	"kb-ingest/internal/queue"
	"kb-ingest/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue) app.Deps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.Deps{
		Store: st,
		Queue: q,
		Processor: pipeline.New(pipeline.Options{
			MaxChunkTokens:   300,
			AllowedFiletypes: []string{".md", ".txt"},
		}, log),
		Config: config.Config{},
		Log:    log,
	}
}

func TestHandleIngest(t *testing.T) {
	docID := uuid.New()

	tests := []struct {
		name    string
		payload queue.IngestPayload
		setup   func(*store.MockStore, *queue.MockQueue)
		wantErr bool
	}{
		{
			name: "markdown document produces section chunks",
			payload: queue.IngestPayload{
				DocumentID: docID,
				Filename:   "guide.md",
				Source:     "upload",
				Content:    []byte("# Intro\n\nSome intro text.\n\n# Usage\n\nHow to use it."),
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SetFileMeta", mock.Anything, docID, mock.Anything).Return(nil).Once()
				s.On("SaveChunks", mock.Anything, docID, mock.MatchedBy(func(chunks []store.Chunk) bool {
					return len(chunks) == 2 &&
						chunks[0].DocID == "guide_1" && chunks[0].Section == "Intro" &&
						chunks[1].DocID == "guide_2" && chunks[1].Section == "Usage"
				})).Return([]store.Chunk{{ID: uuid.New()}, {ID: uuid.New()}}, nil).Once()
				q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
					if task.Type != queue.TaskTypeEmbed {
						return false
					}
					var payload queue.EmbedPayload
					if err := json.Unmarshal(task.Payload, &payload); err != nil {
						return false
					}
					return payload.DocumentID == docID
				})).Return(nil).Once()
			},
		},
		{
			name: "unsupported file marks document failed",
			payload: queue.IngestPayload{
				DocumentID: docID,
				Filename:   "image.png",
				Content:    []byte("binary"),
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("UpdateDocumentStatus", mock.Anything, docID, store.StatusFailed).
					Return(nil).Once()
			},
			wantErr: true,
		},
		{
			name: "empty document goes straight to ready",
			payload: queue.IngestPayload{
				DocumentID: docID,
				Filename:   "blank.txt",
				Content:    []byte("   \n\n  "),
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SetFileMeta", mock.Anything, docID, mock.Anything).Return(nil).Once()
				s.On("SaveChunks", mock.Anything, docID, mock.MatchedBy(func(chunks []store.Chunk) bool {
					return len(chunks) == 0
				})).Return([]store.Chunk{}, nil).Once()
				s.On("UpdateDocumentStatus", mock.Anything, docID, store.StatusReady).
					Return(nil).Once()
			},
		},
		{
			name: "save chunks failure propagates for retry",
			payload: queue.IngestPayload{
				DocumentID: docID,
				Filename:   "guide.md",
				Content:    []byte("# Intro\n\nSome intro text."),
			},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("SetFileMeta", mock.Anything, docID, mock.Anything).Return(nil).Once()
				s.On("SaveChunks", mock.Anything, docID, mock.Anything).
					Return(nil, errors.New("database error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(store.MockStore)
			q := new(queue.MockQueue)
			if tt.setup != nil {
				tt.setup(st, q)
			}

			err := handleIngest(context.Background(), newTestDeps(st, q), tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("handleIngest() error = %v, wantErr %v", err, tt.wantErr)
			}
			st.AssertExpectations(t)
			q.AssertExpectations(t)
		})
	}
}
