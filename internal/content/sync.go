package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/checksum"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/storage"
	"github.com/epropulse/epropulse/internal/textnorm"
)

// Store is the part of the content store the importer needs.
type Store interface {
	PostSources(ctx context.Context) (map[string]string, error)
	GetPostBySource(ctx context.Context, path string) (*models.Post, error)
	GetAuthorBySlug(ctx context.Context, slug string) (*models.Author, error)
	SavePost(ctx context.Context, p *models.Post) error
	DeletePost(ctx context.Context, id string) error
}

// Event kinds passed to an EventCallback.
const (
	EventImported = "imported"
	EventRemoved  = "removed"
)

// EventCallback is called after each import or removal.
type EventCallback func(kind, path string)

// Report summarizes a Sync pass.
type Report struct {
	Imported  int `json:"imported"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`
}

// Sync walks the content directory and brings the store up to date:
//   - new or changed files are parsed and saved
//   - posts whose source file disappeared are deleted
//
// Per-file failures are logged and counted; only listing errors abort.
func Sync(ctx context.Context, st Store, files storage.Provider, logger *slog.Logger, cb EventCallback) (Report, error) {
	var rep Report

	metas, err := files.List("", Ext)
	if err != nil {
		return rep, err
	}
	sources, err := st.PostSources(ctx)
	if err != nil {
		return rep, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if sources[m.Path] == m.Checksum {
			rep.Unchanged++
			continue
		}
		if err := importPath(ctx, st, files, m.Path); err != nil {
			rep.Failed++
			logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		rep.Imported++
		logger.Debug("sync: imported", slog.String("path", m.Path))
		notify(cb, EventImported, m.Path)
	}

	for p := range sources {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := removeSource(ctx, st, p); err != nil {
			rep.Failed++
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		rep.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
		notify(cb, EventRemoved, p)
	}

	return rep, nil
}

func importPath(ctx context.Context, st Store, files storage.Provider, p string) error {
	data, err := files.Read(p)
	if err != nil {
		return err
	}
	return importFile(ctx, st, p, data)
}

// importFile parses data and saves it as the post sourced from p, keeping
// the id and dates of a previous import.
func importFile(ctx context.Context, st Store, p string, data []byte) error {
	res, err := Parse(data)
	if err != nil {
		return err
	}

	post, err := st.GetPostBySource(ctx, p)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		post = &models.Post{SourcePath: p}
	case err != nil:
		return err
	}

	fm := res.Frontmatter
	post.Title = res.Title
	post.Slug = res.Slug
	if post.Slug == "" {
		post.Slug = textnorm.Slugify(strings.TrimSuffix(path.Base(p), path.Ext(p)))
	}
	post.Excerpt = res.Excerpt
	post.Content = res.Body
	post.CoverImage = fm.Cover
	post.Category = strings.TrimSpace(fm.Category)
	post.Tags = res.Tags
	post.Status = models.StatusPublished
	if strings.EqualFold(fm.Status, string(models.StatusDraft)) {
		post.Status = models.StatusDraft
	}
	if !fm.Date.IsZero() {
		d := fm.Date.UTC()
		post.PublishedAt = &d
	}
	post.SourceChecksum = checksum.Sum(data)

	post.AuthorID = ""
	if fm.Author != "" {
		a, err := st.GetAuthorBySlug(ctx, fm.Author)
		switch {
		case err == nil:
			post.AuthorID = a.ID
		case !errors.Is(err, apperr.ErrNotFound):
			return err
		}
	}

	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return st.SavePost(ctx, post)
}

func removeSource(ctx context.Context, st Store, p string) error {
	post, err := st.GetPostBySource(ctx, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return st.DeletePost(ctx, post.ID)
}

func notify(cb EventCallback, kind, p string) {
	if cb != nil {
		cb(kind, p)
	}
}
