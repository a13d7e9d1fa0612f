package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"kb-ingest/internal/docmeta"
	"kb-ingest/internal/embeddings"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var ErrDocumentNotFound = errors.New("document not found")

type Document struct {
	ID        uuid.UUID
	Filename  string
	Source    string
	Status    DocumentStatus
	File      docmeta.FileMeta
	CreatedAt time.Time
}

// Chunk is one stored chunk. DocID and ChunkNumber carry the public
// "{stem}_{n}" labelling; DocumentID keys the owning row.
type Chunk struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	DocID       string
	ChunkNumber int
	Section     string
	Text        string
	TokenCount  int
}

type Embedding struct {
	ChunkID uuid.UUID
	Vector  embeddings.Vector
	Model   string
}

type SearchResult struct {
	Chunk    Chunk
	Filename string
	Source   string
	Score    float32
}

// Store defines the persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateDocument(ctx context.Context, filename, source string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	SetFileMeta(ctx context.Context, id uuid.UUID, meta docmeta.FileMeta) error
	SaveChunks(ctx context.Context, docID uuid.UUID, chunks []Chunk) ([]Chunk, error)
	ListChunks(ctx context.Context, docID uuid.UUID) ([]Chunk, error)
	SaveEmbeddings(ctx context.Context, embs []Embedding) error
	TopK(ctx context.Context, vector embeddings.Vector, k int) ([]SearchResult, error)
}
