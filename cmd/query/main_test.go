package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"kb-ingest/internal/app"
	"kb-ingest/internal/cache"
	"kb-ingest/internal/config"
	"kb-ingest/internal/embeddings"
	"kb-ingest/internal/llm"
	"kb-ingest/internal/store"
)

func newTestDeps(st store.Store, l llm.Client, e embeddings.Embedder, c cache.Cache) app.Deps {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return app.Deps{
		Store:    st,
		LLM:      l,
		Embedder: e,
		Cache:    c,
		Config: config.Config{
			CacheTTLSecs: 60,
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func postQuery(t *testing.T, deps app.Deps, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	queryHandler(deps).ServeHTTP(rec, req)
	return rec
}

func TestQueryHandler(t *testing.T) {
	results := []store.SearchResult{
		{
			Chunk:    store.Chunk{DocID: "guide_1", Section: "Intro", Text: "Intro [SEP] Go is a language."},
			Filename: "guide.md",
			Score:    0.91,
		},
	}

	st := new(store.MockStore)
	l := new(llm.MockClient)
	e := new(embeddings.MockEmbedder)

	e.On("Embed", mock.Anything, "What is Go?").Return(embeddings.Vector{0.1, 0.2}, nil).Once()
	st.On("TopK", mock.Anything, embeddings.Vector{0.1, 0.2}, 3).Return(results, nil).Once()
	l.On("Answer", mock.Anything, "What is Go?", mock.MatchedBy(func(ctx string) bool {
		// Context carries the source attribution header.
		return bytes.Contains([]byte(ctx), []byte("[guide.md / Intro]"))
	})).Return("Go is a programming language.", nil).Once()

	rec := postQuery(t, newTestDeps(st, l, e, nil), `{"question":"What is Go?","top_k":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Answer  string         `json:"answer"`
		Sources []cache.Source `json:"sources"`
		Cached  bool           `json:"cached"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "Go is a programming language." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].DocID != "guide_1" || resp.Sources[0].Section != "Intro" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
	if resp.Cached {
		t.Error("expected cached=false on a miss")
	}
	st.AssertExpectations(t)
	l.AssertExpectations(t)
	e.AssertExpectations(t)
}

func TestQueryHandlerCacheHit(t *testing.T) {
	c := new(cache.MockCache)
	key := cache.GenerateCacheKey("What is Go?", 5)
	c.On("GetQueryResult", mock.Anything, key).Return(&cache.QueryResult{
		Answer:  "cached answer",
		Sources: []cache.Source{{DocID: "guide_1"}},
	}, nil).Once()

	// No store, embedder, or LLM calls expected on a hit.
	rec := postQuery(t, newTestDeps(new(store.MockStore), new(llm.MockClient), new(embeddings.MockEmbedder), c),
		`{"question":"What is Go?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["answer"] != "cached answer" {
		t.Errorf("unexpected answer: %v", resp["answer"])
	}
	if resp["cached"] != true {
		t.Error("expected cached=true")
	}
	c.AssertExpectations(t)
}

func TestQueryHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{"top_k":3}`},
		{"question too short", `{"question":"go"}`},
		{"top_k too large", `{"question":"What is Go?","top_k":100}`},
		{"malformed json", `{"question":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postQuery(t, newTestDeps(new(store.MockStore), new(llm.MockClient), new(embeddings.MockEmbedder), nil), tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestQueryHandlerEmbedFailure(t *testing.T) {
	e := new(embeddings.MockEmbedder)
	e.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("api down")).Once()

	rec := postQuery(t, newTestDeps(new(store.MockStore), new(llm.MockClient), e, nil), `{"question":"What is Go?"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestTruncate(t *testing.T) {
	long := "alpha beta gamma delta epsilon"
	got := truncate(long, 16)
	if got != "alpha beta..." {
		t.Errorf("expected word-boundary cut, got %q", got)
	}
	if truncate("short", 16) != "short" {
		t.Error("short strings should pass through")
	}
}
