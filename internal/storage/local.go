package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// PublicPrefix is the URL path the server mounts the upload directory on.
const PublicPrefix = "/uploads"

// Local writes photos to a directory served by the API itself. It stands in
// for Cloudinary in development.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory to serve under PublicPrefix.
func (l *Local) Dir() string { return l.dir }

// Upload stores the photo under folder with a random name.
func (l *Local) Upload(ctx context.Context, content io.Reader, contentType, folder string) (string, error) {
	folder = cleanFolder(folder)
	ext, ok := extensions[contentType]
	if !ok {
		ext = ".img"
	}
	name := uuid.NewString() + ext

	target := filepath.Join(l.dir, filepath.FromSlash(folder))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	if _, err := io.Copy(f, readerWithContext(ctx, content)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close photo: %w", err)
	}
	return l.baseURL + path.Join(PublicPrefix, folder, name), nil
}

// cleanFolder keeps uploads inside the upload directory.
func cleanFolder(folder string) string {
	folder = path.Clean("/" + strings.ReplaceAll(folder, "\\", "/"))
	return strings.TrimPrefix(folder, "/")
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
