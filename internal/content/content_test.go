package content

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/models"
	"github.com/epropulse/epropulse/internal/store"
	"github.com/epropulse/epropulse/internal/testutil"
)

var quietLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const samplePost = `---
title: Réussir son site vitrine
category: web
tags:
  - seo
  - SEO
  - design
author: awa
status: published
date: 2025-05-02
---
<h1>Réussir son site vitrine</h1>
<p>Un site <strong>rapide</strong> et clair.</p>
<script>alert(1)</script>
`

func TestParse_FrontmatterAndBody(t *testing.T) {
	r, err := Parse([]byte(samplePost))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Réussir son site vitrine" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Slug != "reussir-son-site-vitrine" {
		t.Errorf("slug = %q", r.Slug)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "seo" || r.Tags[1] != "design" {
		t.Errorf("tags = %v, want [seo design]", r.Tags)
	}
	if !strings.Contains(r.Body, "<strong>rapide</strong>") {
		t.Errorf("body = %q", r.Body)
	}
	if strings.Contains(r.Body, "script") {
		t.Errorf("body kept a script: %q", r.Body)
	}
	if r.Frontmatter.Date.Year() != 2025 {
		t.Errorf("date = %v", r.Frontmatter.Date)
	}
	if !strings.HasPrefix(r.Excerpt, "Réussir son site vitrine") {
		t.Errorf("excerpt = %q", r.Excerpt)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("<h1>Juste un titre</h1><p>Du texte.</p>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Juste un titre" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Slug != "juste-un-titre" {
		t.Errorf("slug = %q", r.Slug)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\n<p>Corps</p>\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter.Title != "" {
		t.Errorf("expected empty frontmatter on invalid YAML")
	}
	if r.Title != "" {
		t.Errorf("title = %q, want empty", r.Title)
	}
}

func TestParse_UnclosedFrontmatterIsBody(t *testing.T) {
	_, body := splitFrontmatter([]byte("---\ntitle: x\n<p>pas de fin</p>"))
	if !strings.HasPrefix(body, "---") {
		t.Errorf("body = %q", body)
	}
}

func seedAuthor(t *testing.T, st *store.SQL) *models.Author {
	t.Helper()
	a := &models.Author{Slug: "awa", Name: "Awa Dossou"}
	if err := st.SaveAuthor(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestSync_ImportUpdateRemove(t *testing.T) {
	ctx := context.Background()
	st := testutil.TestStore(t)
	dir, files := testutil.TestDir(t)
	author := seedAuthor(t, st)

	testutil.WriteFile(t, dir, "2025/site-vitrine.html", samplePost)
	testutil.WriteFile(t, dir, "notes.txt", "ignored")

	var mu sync.Mutex
	var events []string
	cb := func(kind, p string) {
		mu.Lock()
		events = append(events, kind+":"+p)
		mu.Unlock()
	}

	rep, err := Sync(ctx, st, files, quietLogger, cb)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rep.Imported != 1 || rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}

	post, err := st.GetPostBySlug(ctx, "reussir-son-site-vitrine")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if post.AuthorID != author.ID {
		t.Errorf("author = %q, want %q", post.AuthorID, author.ID)
	}
	if post.SourcePath != "2025/site-vitrine.html" || post.SourceChecksum == "" {
		t.Errorf("source = %q %q", post.SourcePath, post.SourceChecksum)
	}
	if !post.Published() || post.PublishedAt == nil || post.PublishedAt.Year() != 2025 {
		t.Errorf("publication = %s %v", post.Status, post.PublishedAt)
	}
	if strings.Contains(post.Content, "script") {
		t.Errorf("stored content kept a script: %q", post.Content)
	}
	if want := editor.ParseHTML(post.Content).HTML(); post.Content != want {
		t.Errorf("stored content is not editor markup:\n got %q\nwant %q", post.Content, want)
	}

	rep, _ = Sync(ctx, st, files, quietLogger, cb)
	if rep.Unchanged != 1 || rep.Imported != 0 {
		t.Errorf("second pass = %+v, want unchanged", rep)
	}

	testutil.WriteFile(t, dir, "2025/site-vitrine.html", strings.Replace(samplePost, "rapide", "très rapide", 1))
	rep, _ = Sync(ctx, st, files, quietLogger, cb)
	if rep.Imported != 1 {
		t.Errorf("update pass = %+v", rep)
	}
	updated, _ := st.GetPostBySlug(ctx, "reussir-son-site-vitrine")
	if updated.ID != post.ID {
		t.Errorf("id changed on update: %q -> %q", post.ID, updated.ID)
	}
	if !strings.Contains(updated.Content, "très rapide") {
		t.Errorf("content not updated: %q", updated.Content)
	}

	if err := os.Remove(filepath.Join(dir, "2025/site-vitrine.html")); err != nil {
		t.Fatal(err)
	}
	rep, _ = Sync(ctx, st, files, quietLogger, cb)
	if rep.Removed != 1 {
		t.Errorf("remove pass = %+v", rep)
	}
	if _, err := st.GetPostBySlug(ctx, "reussir-son-site-vitrine"); err == nil {
		t.Error("post should be gone")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"imported:2025/site-vitrine.html", "imported:2025/site-vitrine.html", "removed:2025/site-vitrine.html"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestSync_InvalidFileCounted(t *testing.T) {
	st := testutil.TestStore(t)
	dir, files := testutil.TestDir(t)
	testutil.WriteFile(t, dir, "vide.html", "<p></p>")

	rep, err := Sync(context.Background(), st, files, quietLogger, nil)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rep.Failed != 1 || rep.Imported != 0 {
		t.Errorf("report = %+v, want one failure", rep)
	}
}

func TestSync_DraftAndSlugFromFileName(t *testing.T) {
	ctx := context.Background()
	st := testutil.TestStore(t)
	dir, files := testutil.TestDir(t)
	testutil.WriteFile(t, dir, "Mon Brouillon.html", "---\ntitle: \"!!!\"\nstatus: draft\n---\n<p>En cours.</p>")

	if _, err := Sync(ctx, st, files, quietLogger, nil); err != nil {
		t.Fatal(err)
	}
	post, err := st.GetPostBySlug(ctx, "mon-brouillon")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if post.Published() {
		t.Error("draft imported as published")
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ImportsAndRemoves(t *testing.T) {
	st := testutil.TestStore(t)
	dir, files := testutil.TestDir(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, st, files, dir, quietLogger, func(kind, p string) {
			mu.Lock()
			events = append(events, kind+":"+p)
			mu.Unlock()
		})
	}()
	defer func() { cancel(); <-done }()

	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, dir, "nouveau.html", "<h1>Nouveau</h1><p>Bonjour.</p>")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := st.GetPostBySlug(context.Background(), "nouveau")
		return err == nil
	}, "new file not imported by watcher")

	_ = os.Remove(filepath.Join(dir, "nouveau.html"))
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := st.GetPostBySlug(context.Background(), "nouveau")
		return err != nil
	}, "removed file still has a post")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "removed:nouveau.html" {
				return true
			}
		}
		return false
	}, "expected removed:nouveau.html callback")
}

func TestWatch_NewDirectory(t *testing.T) {
	st := testutil.TestStore(t)
	dir, files := testutil.TestDir(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, st, files, dir, quietLogger, nil)
	}()
	defer func() { cancel(); <-done }()

	time.Sleep(100 * time.Millisecond)
	_ = os.MkdirAll(filepath.Join(dir, "rubrique"), 0o755)
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, dir, "rubrique/profond.html", "<h1>Profond</h1><p>Texte.</p>")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		p, err := st.GetPostBySlug(context.Background(), "profond")
		return err == nil && p.SourcePath == "rubrique/profond.html"
	}, "file in new directory not imported")
}
