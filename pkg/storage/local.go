package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	DefaultUploadsDir = "public/uploads"
	DefaultURLPrefix  = "/uploads"
)

// LocalStorage keeps blobs in one flat directory served under urlPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage creates the base directory if missing.
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultUploadsDir
	}
	if strings.TrimSpace(urlPrefix) == "" {
		urlPrefix = DefaultURLPrefix
	}
	urlPrefix = "/" + strings.Trim(urlPrefix, "/")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStorage{dir: dir, urlPrefix: urlPrefix}, nil
}

func (l *LocalStorage) Dir() string       { return l.dir }
func (l *LocalStorage) URLPrefix() string { return l.urlPrefix }

// Path is where fileName lives on disk.
func (l *LocalStorage) Path(fileName string) string {
	return filepath.Join(l.dir, safeFilename(fileName))
}

func (l *LocalStorage) imagePath(fileName string) string {
	return path.Join(l.urlPrefix, safeFilename(fileName))
}

func (l *LocalStorage) Put(_ context.Context, r io.Reader, fileName string) (string, error) {
	target := l.Path(fileName)
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close file: %w", err)
	}
	return l.imagePath(fileName), nil
}

// Import lets fill write straight into the uploads directory.
func (l *LocalStorage) Import(_ context.Context, fileName string, fill func(localPath string) error) (string, error) {
	target := l.Path(fileName)
	if err := fill(target); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return l.imagePath(fileName), nil
}

func (l *LocalStorage) Owns(imagePath string) bool {
	return strings.HasPrefix(imagePath, l.urlPrefix+"/")
}

func (l *LocalStorage) Delete(_ context.Context, imagePath string) error {
	if !l.Owns(imagePath) {
		return nil
	}
	err := os.Remove(l.Path(path.Base(imagePath)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) List(_ context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read uploads dir: %w", err)
	}
	blobs := make([]BlobInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		blobs = append(blobs, BlobInfo{ImagePath: l.imagePath(e.Name()), ModTime: info.ModTime()})
	}
	return blobs, nil
}

func safeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}
