package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/P3chys/awards-api/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PublicPrefix is the URL path under which stored images are served.
const PublicPrefix = "/uploads/"

var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidName   = errors.New("invalid image name")
)

type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ImageStore keeps uploaded award images. Save returns the public path that
// award records reference as media_path.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, name string) error
}

func NewImageStore(cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		return NewMinIOImageStore(cfg)
	case "disk", "":
		return NewDiskImageStore(cfg.UploadDir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

type MinIOImageStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOImageStore(cfg *config.Config) (*MinIOImageStore, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
	}

	return &MinIOImageStore{
		client: client,
		bucket: cfg.MinIOBucket,
	}, nil
}

func (s *MinIOImageStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

func (s *MinIOImageStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := checkName(name); err != nil {
		return nil, ObjectInfo{}, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ObjectInfo{}, ErrImageNotFound
		}
		return nil, ObjectInfo{}, err
	}

	return obj, ObjectInfo{Size: stat.Size, ContentType: stat.ContentType}, nil
}

func (s *MinIOImageStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

// DiskImageStore writes images into a local directory.
type DiskImageStore struct {
	dir string
}

func NewDiskImageStore(dir string) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskImageStore{dir: dir}, nil
}

func (s *DiskImageStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

func (s *DiskImageStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := checkName(name); err != nil {
		return nil, ObjectInfo{}, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ObjectInfo{}, ErrImageNotFound
		}
		return nil, ObjectInfo{}, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return f, ObjectInfo{Size: stat.Size(), ContentType: contentType}, nil
}

func (s *DiskImageStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrImageNotFound
	}
	return err
}
