// Package media stores the images inserted into posts.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/epropulse/epropulse/internal/apperr"
	"github.com/epropulse/epropulse/internal/storage"
)

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes = 10 << 20

// URLPrefix is where stored files are served.
const URLPrefix = "/media/"

var (
	// ErrTooLarge is returned for files over the size limit.
	ErrTooLarge = fmt.Errorf("%w: file too large", apperr.ErrInvalidInput)
	// ErrUnsupported is returned for anything but raster images.
	ErrUnsupported = fmt.Errorf("%w: unsupported file type", apperr.ErrInvalidInput)
)

var (
	mimeToExt = map[string]string{
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	allowedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

	nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
)

// Asset describes a stored file.
type Asset struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

// Library stores media files under a storage root.
type Library struct {
	files    storage.Provider
	maxBytes int64
	client   *http.Client
}

// NewLibrary creates a Library. A non-positive maxBytes uses DefaultMaxBytes.
func NewLibrary(files storage.Provider, maxBytes int64) *Library {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Library{files: files, maxBytes: maxBytes, client: safeClient()}
}

// MaxBytes returns the upload size limit.
func (l *Library) MaxBytes() int64 { return l.maxBytes }

// Save stores the content of r under a fresh uuid name. The type is sniffed
// from the content; the client-supplied name is ignored.
func (l *Library) Save(r io.Reader) (Asset, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return Asset{}, err
	}
	if int64(len(data)) > l.maxBytes {
		return Asset{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("%w: empty file", apperr.ErrInvalidInput)
	}

	ct := sniff(data)
	ext, ok := mimeToExt[ct]
	if !ok {
		return Asset{}, ErrUnsupported
	}

	name := uuid.New().String() + ext
	if err := l.files.Write(name, data); err != nil {
		return Asset{}, err
	}
	return Asset{Filename: name, Size: int64(len(data)), URL: URLPrefix + name, ContentType: ct}, nil
}

// Delete removes a stored file.
func (l *Library) Delete(name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: invalid filename", apperr.ErrInvalidInput)
	}
	if _, err := l.files.Read(name); err != nil {
		return apperr.ErrNotFound
	}
	return l.files.Delete(name)
}

// List returns the stored images, newest first.
func (l *Library) List() ([]Asset, error) {
	infos, err := l.files.List("", ".png", ".jpg", ".jpeg", ".gif", ".webp")
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].UpdatedAt.After(infos[j].UpdatedAt) })
	out := make([]Asset, 0, len(infos))
	for _, fi := range infos {
		out = append(out, Asset{Filename: fi.Path, Size: fi.Size, URL: URLPrefix + fi.Path})
	}
	return out, nil
}

// ServeHTTP serves stored files below URLPrefix.
func (l *Library) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, URLPrefix)
	if !validName(name) {
		http.NotFound(w, r)
		return
	}
	data, err := l.files.Read(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", sniff(data))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

// Import stores an image given as a data URI or downloaded from an http(s)
// URL.
func (l *Library) Import(ctx context.Context, raw string) (Asset, error) {
	var data []byte
	var err error
	if strings.HasPrefix(raw, "data:") {
		data, err = decodeDataURI(raw)
	} else {
		data, err = l.fetch(ctx, raw)
	}
	if err != nil {
		return Asset{}, err
	}
	return l.Save(bytes.NewReader(data))
}

func validName(name string) bool {
	return name != "" && name == path.Base(name) && nameRe.MatchString(name) &&
		!strings.Contains(name, "..") && allowedExt[strings.ToLower(path.Ext(name))]
}

func sniff(data []byte) string {
	return strings.Split(http.DetectContentType(data), ";")[0]
}
