package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"kb-ingest/internal/app"
	"kb-ingest/internal/cache"
	"kb-ingest/internal/httputil"
	"kb-ingest/internal/store"
)

type queryRequest struct {
	Question string `json:"question" validate:"required,min=3,max=500"`
	TopK     int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

func main() {
	deps, err := app.BuildQuery()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/query", queryHandler(deps))
	r.Get("/healthz", httputil.ServeHealth(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("query service listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server error", "err", err)
	}
}

func queryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		if req.TopK == 0 {
			req.TopK = 5
		}

		ctx := r.Context()

		// Check cache first
		cacheKey := cache.GenerateCacheKey(req.Question, req.TopK)
		if cached, err := deps.Cache.GetQueryResult(ctx, cacheKey); err == nil && cached != nil {
			deps.Log.Info("cache hit", "question", req.Question)
			httputil.WriteJSON(w, http.StatusOK, map[string]any{
				"answer":  cached.Answer,
				"sources": cached.Sources,
				"cached":  true,
			})
			return
		}

		vec, err := deps.Embedder.Embed(ctx, req.Question)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to embed question", err, http.StatusInternalServerError)
			return
		}
		results, err := deps.Store.TopK(ctx, vec, req.TopK)
		if err != nil {
			httputil.Fail(deps.Log, w, "search failed", err, http.StatusInternalServerError)
			return
		}

		answer, err := deps.LLM.Answer(ctx, req.Question, buildContext(results))
		if err != nil {
			httputil.Fail(deps.Log, w, "llm failed", err, http.StatusInternalServerError)
			return
		}

		sources := buildSources(results)

		if err := deps.Cache.SetQueryResult(ctx, cacheKey, &cache.QueryResult{
			Answer:  answer,
			Sources: sources,
		}, deps.CacheTTL()); err != nil {
			// Log cache write failure but don't fail the request
			deps.Log.Warn("failed to cache result", "err", err)
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"answer":  answer,
			"sources": sources,
			"cached":  false,
		})
	}
}

// buildContext concatenates retrieved chunks for the LLM prompt, each
// prefixed with its origin so the model can cite where answers came from.
func buildContext(results []store.SearchResult) string {
	var builder strings.Builder
	for _, res := range results {
		fmt.Fprintf(&builder, "[%s / %s]\n%s\n\n", res.Filename, res.Chunk.Section, res.Chunk.Text)
	}
	return builder.String()
}

// buildSources converts search results into response sources with truncated previews.
func buildSources(results []store.SearchResult) []cache.Source {
	sources := make([]cache.Source, len(results))
	for i, res := range results {
		sources[i] = cache.Source{
			DocID:    res.Chunk.DocID,
			Section:  res.Chunk.Section,
			Filename: res.Filename,
			Score:    res.Score,
			Preview:  truncate(res.Chunk.Text, 150),
		}
	}
	return sources
}

// truncate limits text to maxLen characters, cutting at word boundary.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if idx := strings.LastIndex(s[:maxLen], " "); idx > 0 {
		return s[:idx] + "..."
	}
	return s[:maxLen] + "..."
}
