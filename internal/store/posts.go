package store

import (
	"context"
	"sort"
	"strings"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/models"
)

// likeEscaper escapes LIKE wildcards for an ESCAPE '!' clause.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

const postColumns = `id, slug, title, excerpt, content, cover_image, author_id, category, tags,
	status, source_path, source_checksum, extra, published_at, created_at, updated_at`

// ListPosts returns posts matching f, most recently published first.
func (s *SQL) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.AuthorID != "" {
		where = append(where, "author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.Tag != "" {
		// Tags are a JSON array of strings; match the encoded element.
		elem, err := models.EncodeJSON(f.Tag)
		if err != nil {
			return nil, wrap("list posts", err)
		}
		where = append(where, `tags LIKE ? ESCAPE '!'`)
		args = append(args, "%"+likeEscaper.Replace(elem)+"%")
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY COALESCE(published_at, created_at) DESC, id"
	query, args = page(query, args, f.Limit, f.Offset)

	posts := []models.Post{}
	if err := s.selectAll(ctx, &posts, query, args...); err != nil {
		return nil, wrap("list posts", err)
	}
	return posts, nil
}

// GetPost returns the post with the given id.
func (s *SQL) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.getPost(ctx, "id", id)
}

// GetPostBySlug returns the post with the given slug.
func (s *SQL) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getPost(ctx, "slug", slug)
}

// GetPostBySource returns the post imported from the content file at path.
func (s *SQL) GetPostBySource(ctx context.Context, path string) (*models.Post, error) {
	if path == "" {
		return nil, apperr.ErrNotFound
	}
	return s.getPost(ctx, "source_path", path)
}

func (s *SQL) getPost(ctx context.Context, column, value string) (*models.Post, error) {
	var p models.Post
	err := s.get(ctx, &p, `SELECT `+postColumns+` FROM posts WHERE `+column+` = ?`, value)
	if err != nil {
		return nil, wrap("get post", err)
	}
	return &p, nil
}

// PostSources maps the source path of every imported post to its checksum.
func (s *SQL) PostSources(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Path     string `db:"source_path"`
		Checksum string `db:"source_checksum"`
	}
	if err := s.selectAll(ctx, &rows, `SELECT source_path, source_checksum FROM posts WHERE source_path <> ''`); err != nil {
		return nil, wrap("post sources", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Path] = r.Checksum
	}
	return out, nil
}

// SavePost inserts p when it has no id and updates it otherwise. Publishing a
// post for the first time stamps PublishedAt.
func (s *SQL) SavePost(ctx context.Context, p *models.Post) error {
	now := s.now()
	p.UpdatedAt = now
	if p.Tags == nil {
		p.Tags = models.StringList{}
	}
	if p.Published() && p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	if p.ID == "" {
		id, err := newID("post")
		if err != nil {
			return err
		}
		p.ID = id
		p.CreatedAt = now
		_, err = s.exec(ctx, `INSERT INTO posts (`+postColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage, p.AuthorID, p.Category, p.Tags,
			p.Status, p.SourcePath, p.SourceChecksum, p.Extra, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			p.ID = ""
			return wrap("insert post", err)
		}
		return nil
	}

	return s.execOne(ctx, "update post", `UPDATE posts SET
			slug = ?, title = ?, excerpt = ?, content = ?, cover_image = ?, author_id = ?,
			category = ?, tags = ?, status = ?, source_path = ?, source_checksum = ?, extra = ?,
			published_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage, p.AuthorID,
		p.Category, p.Tags, p.Status, p.SourcePath, p.SourceChecksum, p.Extra,
		p.PublishedAt, p.UpdatedAt, p.ID)
}

// UpdatePostContent replaces the HTML body of a post.
func (s *SQL) UpdatePostContent(ctx context.Context, id, content string) error {
	return s.execOne(ctx, "update post content",
		`UPDATE posts SET content = ?, updated_at = ? WHERE id = ?`, content, s.now(), id)
}

// DeletePost removes a post.
func (s *SQL) DeletePost(ctx context.Context, id string) error {
	return s.execOne(ctx, "delete post", `DELETE FROM posts WHERE id = ?`, id)
}

// ListTags counts the tags of published posts, most used first.
func (s *SQL) ListTags(ctx context.Context) ([]TagCount, error) {
	var lists []models.StringList
	if err := s.selectAll(ctx, &lists, `SELECT tags FROM posts WHERE status = ?`, models.StatusPublished); err != nil {
		return nil, wrap("list tags", err)
	}
	counts := map[string]int{}
	for _, l := range lists {
		for _, t := range l {
			if t = strings.TrimSpace(t); t != "" {
				counts[t]++
			}
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}
