package upload

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	errors "github.com/boostify/storefront/internal"
	"github.com/google/uuid"
)

type Kind string

const (
	KindImage Kind = "image"
	KindAsset Kind = "asset"
)

// Content types accepted per kind, keyed by the sniffed MIME type. The file
// extension on the stored name comes from here, never from the client.
var allowedTypes = map[Kind]map[string]string{
	KindImage: {
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	},
	KindAsset: {
		"application/pdf":              ".pdf",
		"application/zip":              ".zip",
		"application/x-zip-compressed": ".zip",
	},
}

type StoredFile struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Store writes validated uploads to local disk under collision-resistant names.
type Store struct {
	dir      string
	maxBytes map[Kind]int64
	logger   *slog.Logger
}

func NewStore(dir string, maxImageBytes, maxAssetBytes int64, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, string(KindImage)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image upload dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, string(KindAsset)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset upload dir: %w", err)
	}

	return &Store{
		dir: dir,
		maxBytes: map[Kind]int64{
			KindImage: maxImageBytes,
			KindAsset: maxAssetBytes,
		},
		logger: logger,
	}, nil
}

// Save validates the stream and writes it to disk. The MIME type is sniffed
// from content; declaredSize is checked up front so oversized uploads are
// rejected before anything touches disk.
func (s *Store) Save(kind Kind, declaredSize int64, r io.Reader) (*StoredFile, error) {
	max, ok := s.maxBytes[kind]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown upload kind %q", kind), errors.ErrCodeUnsupportedFile)
	}

	if declaredSize > max {
		return nil, errors.NewValidationError(
			fmt.Sprintf("file exceeds the %d byte limit", max), errors.ErrCodeFileTooLarge)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, allowed := allowedTypes[kind][contentType]
	if !allowed {
		s.logger.Warn("rejected upload with unsupported content type",
			"kind", kind, "content_type", contentType)
		return nil, errors.NewValidationError(
			fmt.Sprintf("unsupported file type %s", contentType), errors.ErrCodeUnsupportedFile)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, string(kind), name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	// +1 so a stream that lied about its size is caught, not truncated.
	written, err := io.Copy(f, io.LimitReader(io.MultiReader(bytes.NewReader(head), r), max+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if written > max {
		os.Remove(path)
		return nil, errors.NewValidationError(
			fmt.Sprintf("file exceeds the %d byte limit", max), errors.ErrCodeFileTooLarge)
	}

	s.logger.Info("upload stored", "kind", kind, "name", name, "size", written, "content_type", contentType)

	return &StoredFile{
		Name:        name,
		Path:        path,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Open returns a reader for a previously stored file, used by the digital
// download endpoint.
func (s *Store) Open(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}
