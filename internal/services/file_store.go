package services

import (
	"github.com/google/uuid"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var allowedUploadExtensions = []string{".pdf", ".doc", ".docx", ".mp3", ".m4a", ".wav", ".png", ".jpg"}

// FileStore keeps uploaded artifacts in one flat directory and never resolves a name outside of it.
type FileStore struct {
	dir      string
	maxBytes int64
}

func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(abs, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	return &FileStore{dir: abs, maxBytes: maxBytes}, nil
}

func (s *FileStore) resolve(name string) (string, error) {
	invalid := apperr.Validation("invalid file name", map[string]string{"name": "must be a plain file name"})

	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") ||
		filepath.IsAbs(name) || filepath.Base(name) != name {
		return "", invalid
	}

	path := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel != name {
		return "", invalid
	}
	return path, nil
}

// Open returns the stored file. The caller closes it.
func (s *FileStore) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, apperr.NotFound("file")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "open file")
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		return nil, nil, apperr.NotFound("file")
	}
	return file, info, nil
}

// Save stores the content under a generated name that keeps the original extension.
func (s *FileStore) Save(content io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !lo.Contains(allowedUploadExtensions, ext) {
		return "", apperr.Validation("unsupported file type", map[string]string{"file": "extension " + ext + " is not allowed"})
	}

	name := uuid.NewString() + ext
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", errors.Wrap(err, "create file")
	}

	written, err := io.Copy(file, io.LimitReader(content, s.maxBytes+1))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = apperr.Validation("file is too large", map[string]string{"file": "exceeds upload limit"})
	}
	if err != nil {
		_ = os.Remove(path)
		if _, ok := apperr.As(err); ok {
			return "", err
		}
		return "", errors.Wrap(err, "write file")
	}
	return name, nil
}
