package services

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ai-recruiter/internal/repositories"
)

// StorageService is an opaque blob store: Upload returns a file id and
// Download streams the blob back by that id. Backed by the local disk.
type StorageService interface {
	Upload(src io.Reader, filename string) (string, error)
	Download(fid string) (io.ReadCloser, string, error)
	Delete(fid string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Upload stores the blob under a generated fid. The original extension is
// kept inside the fid so Download can recover the content type.
func (s *storageService) Upload(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fid := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, fid)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to store blob: %w", err)
	}

	return fid, nil
}

func (s *storageService) Download(fid string) (io.ReadCloser, string, error) {
	// fid is generated by Upload; reject anything that could escape the
	// upload directory.
	if fid != filepath.Base(fid) {
		return nil, "", fmt.Errorf("invalid fid: %s", fid)
	}

	f, err := os.Open(filepath.Join(s.uploadPath, fid))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("blob %s: %w", fid, repositories.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to open blob %s: %w", fid, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(fid))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return f, contentType, nil
}

func (s *storageService) Delete(fid string) error {
	if fid != filepath.Base(fid) {
		return fmt.Errorf("invalid fid: %s", fid)
	}
	if err := os.Remove(filepath.Join(s.uploadPath, fid)); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", fid, err)
	}
	return nil
}
