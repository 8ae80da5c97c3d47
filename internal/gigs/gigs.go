// Package gigs aggregates content frontmatter into the ordered gigs document.
package gigs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"path/filepath"

	"github.com/starford/gigs/internal/apperr"
	"github.com/starford/gigs/internal/models"
	"github.com/starford/gigs/internal/parser"
	"github.com/starford/gigs/internal/storage"
)

// Options selects where content is read from and where the document goes.
type Options struct {
	InputRoot  string
	OutputPath string
	Extension  string
}

// Result describes a completed export.
type Result struct {
	Count      int
	OutputPath string // absolute
	Checksum   string
	Document   []byte
}

// Aggregate reads and parses every path and returns one event per file, in
// the order given. The first failure aborts the run.
func Aggregate(ctx context.Context, store storage.Provider, paths []string, logger *slog.Logger) ([]models.Event, error) {
	events := make([]models.Event, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := store.Rel(p)
		if err != nil {
			return nil, apperr.Stage(apperr.StageParse, p, err)
		}
		data, err := store.Read(p)
		if err != nil {
			return nil, apperr.Stage(apperr.StageParse, rel, err)
		}
		fm, err := parser.Parse(data)
		if err != nil {
			return nil, apperr.Stage(apperr.StageParse, rel, err)
		}
		logger.Debug("gigs: parsed", slog.String("file", rel), slog.Int("fields", len(fm)))
		events = append(events, models.NewEvent(rel, fm))
	}
	return events, nil
}

// Encode renders events as a JSON array indented by two spaces, without HTML
// escaping or a trailing newline.
func Encode(events []models.Event) ([]byte, error) {
	if events == nil {
		events = []models.Event{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Export runs collect, aggregate, sort, encode and write in that order.
// Nothing is written unless every earlier stage succeeds.
func Export(ctx context.Context, opts Options, logger *slog.Logger) (*Result, error) {
	store, err := storage.NewFS(opts.InputRoot)
	if err != nil {
		return nil, apperr.Stage(apperr.StageCollect, opts.InputRoot, err)
	}
	paths, err := store.Collect(ctx, opts.Extension)
	if err != nil {
		return nil, apperr.Stage(apperr.StageCollect, store.Root(), err)
	}
	logger.Debug("gigs: collected", slog.String("root", store.Root()), slog.Int("files", len(paths)))

	events, err := Aggregate(ctx, store, paths, logger)
	if err != nil {
		return nil, err
	}
	Sort(events)

	doc, err := Encode(events)
	if err != nil {
		return nil, apperr.Stage(apperr.StageEncode, "", err)
	}

	out, err := filepath.Abs(opts.OutputPath)
	if err != nil {
		return nil, apperr.Stage(apperr.StageWrite, opts.OutputPath, err)
	}
	if err := storage.WriteFile(out, doc); err != nil {
		return nil, apperr.Stage(apperr.StageWrite, out, err)
	}

	return &Result{
		Count:      len(events),
		OutputPath: out,
		Checksum:   checksum(doc),
		Document:   doc,
	}, nil
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
