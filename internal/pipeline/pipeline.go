package pipeline

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"kb-ingest/internal/chunking"
	"kb-ingest/internal/convert"
	"kb-ingest/internal/docmeta"
)

// Processor runs the full per-document pass: conversion, chunking, and
// metadata assembly. It holds no per-document state and is safe for
// concurrent use.
type Processor struct {
	engine  *chunking.Engine
	allowed map[string]bool
	workers int
	log     *slog.Logger
}

// Options configures a Processor.
type Options struct {
	MaxChunkTokens   int
	AllowedFiletypes []string
	Workers          int
}

func New(opts Options, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if len(opts.AllowedFiletypes) == 0 {
		opts.AllowedFiletypes = []string{".md", ".docx", ".pdf"}
	}
	allowed := make(map[string]bool, len(opts.AllowedFiletypes))
	for _, ext := range opts.AllowedFiletypes {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = true
	}
	return &Processor{
		engine:  chunking.NewEngine(opts.MaxChunkTokens, log),
		allowed: allowed,
		workers: opts.Workers,
		log:     log,
	}
}

// Result reports one document's outcome. Err is informational: a failed or
// empty document yields zero records, never an abort.
type Result struct {
	Path     string
	Filename string
	Records  []docmeta.Record
	File     docmeta.FileMeta
	Err      error
}

// BatchSummary aggregates a directory run.
type BatchSummary struct {
	Results     []Result
	TotalChunks int
	Failed      int
}

// ProcessReader converts and chunks a single document.
func (p *Processor) ProcessReader(r io.Reader, filename string, size int64, source string) Result {
	res := Result{Filename: filename}

	conv, err := convert.ForFile(filename)
	if err != nil {
		p.log.Warn("unsupported document", "file", filename, "err", err)
		res.Err = err
		return res
	}

	text, pages, err := conv.Convert(r, filename)
	if err != nil {
		p.log.Warn("conversion failed", "file", filename, "err", err)
		res.Err = err
		return res
	}
	if strings.TrimSpace(text) == "" {
		p.log.Warn("no content extracted", "file", filename)
		return res
	}

	chunks := p.engine.Chunks(text)
	res.File = docmeta.NewFileMeta(filename, source, chunking.Normalize(text), size, pages)
	res.Records = docmeta.Assemble(filename, chunks, res.File)

	p.log.Info("processed document", "file", filename, "chunks", len(res.Records))
	return res
}

// ProcessFile converts and chunks a document on disk.
func (p *Processor) ProcessFile(path, source string) Result {
	f, err := os.Open(path)
	if err != nil {
		p.log.Warn("open failed", "path", path, "err", err)
		return Result{Path: path, Filename: filepath.Base(path), Err: err}
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	res := p.ProcessReader(f, filepath.Base(path), size, source)
	res.Path = path
	return res
}

// ProcessDir walks root recursively and processes every document with an
// allowed filetype, fanning out across the configured number of workers.
// One document's failure never aborts the rest; per-file status lands in
// the summary. Document pipelines are independent, so output aggregation
// needs no ordering beyond the stable slice positions used here.
func (p *Processor) ProcessDir(ctx context.Context, root, source string) (BatchSummary, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !p.allowed[strings.ToLower(filepath.Ext(path))] {
			p.log.Debug("skipping file", "path", path)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return BatchSummary{}, err
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Filename: filepath.Base(path), Err: err}
				return nil
			}
			results[i] = p.ProcessFile(path, source)
			return nil
		})
	}
	_ = g.Wait()

	summary := BatchSummary{Results: results}
	for _, res := range results {
		summary.TotalChunks += len(res.Records)
		if res.Err != nil {
			summary.Failed++
		}
	}
	p.log.Info("batch complete", "files", len(results), "failed", summary.Failed, "chunks", summary.TotalChunks)
	return summary, nil
}
