// Package storage keeps uploaded product images on the local "public" disk.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 2048 * 1024

var (
	ErrTooLarge    = errors.New("the image may not be greater than 2048 kilobytes")
	ErrUnsupported = errors.New("the image must be a file of type: jpeg, png, jpg, gif, webp")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Upload is an incoming file as handed over by the transport layer.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Image is an upload that passed content validation.
type Image struct {
	Data      []byte
	MIME      string
	Extension string
}

// ReadImage enforces the size limit and sniffs the content type; the
// client supplied filename and headers are not trusted.
func ReadImage(upload *Upload) (*Image, error) {
	if upload == nil || upload.Content == nil {
		return nil, fmt.Errorf("no file uploaded")
	}
	if upload.Size > MaxImageSize {
		return nil, ErrTooLarge
	}

	buf, err := io.ReadAll(io.LimitReader(upload.Content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(buf) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(buf)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, ErrUnsupported
	}
	return &Image{Data: buf, MIME: mtype.String(), Extension: mtype.Extension()}, nil
}

type Storage interface {
	// PutImage writes img under dir and returns the relative path recorded
	// on the entity.
	PutImage(ctx context.Context, dir string, img *Image) (string, error)
	Delete(ctx context.Context, relPath string) error
	URL(relPath string) string
}

type LocalDisk struct {
	root    string
	baseURL string
}

// NewLocalDisk serves files written below root at baseURL + "/storage/".
func NewLocalDisk(root, baseURL string) *LocalDisk {
	return &LocalDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *LocalDisk) Root() string {
	return d.root
}

func (d *LocalDisk) PutImage(ctx context.Context, dir string, img *Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := path.Join(dir, uuid.New().String()+img.Extension)
	full := filepath.Join(d.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", rel, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, bytes.NewReader(img.Data)); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", rel, err)
	}
	return rel, nil
}

// Delete removes a stored file. Absolute URLs (seeded images) and missing
// files are ignored.
func (d *LocalDisk) Delete(ctx context.Context, relPath string) error {
	if relPath == "" || IsAbsoluteURL(relPath) {
		return nil
	}
	full := filepath.Join(d.root, filepath.FromSlash(path.Clean("/" + relPath)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", relPath, err)
	}
	return nil
}

func (d *LocalDisk) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	if IsAbsoluteURL(relPath) {
		return relPath
	}
	return d.baseURL + "/storage/" + strings.TrimLeft(relPath, "/")
}

func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
