package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/perseus-aa/manifest-compiler/compiler"
)

// S3Config holds bucket connection settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`

	// Prefix is prepended to every object key.
	Prefix string `yaml:"prefix"`
}

// Enabled reports whether uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// ObjectStore is the part of *minio.Client the uploader uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader copies compiled files into a bucket. It implements
// compiler.Sink.
type Uploader struct {
	store  ObjectStore
	bucket string
	prefix string
	logger *slog.Logger
}

// NewUploader connects to the configured endpoint.
func NewUploader(cfg S3Config, logger *slog.Logger) (*Uploader, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return NewUploaderWithStore(mc, cfg, logger), nil
}

// NewUploaderWithStore creates an uploader over an existing store.
func NewUploaderWithStore(store ObjectStore, cfg S3Config, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		store:  store,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}
}

// Init creates the bucket if it does not exist.
func (u *Uploader) Init(ctx context.Context) error {
	exists, err := u.store.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.store.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", u.bucket, err)
		}
		u.logger.Info("Bucket created", "bucket", u.bucket)
	}
	return nil
}

// ObjectName returns the object key for an output key.
func (u *Uploader) ObjectName(key string) string {
	if u.prefix == "" {
		return key
	}
	return path.Join(u.prefix, key)
}

// Publish implements compiler.Sink.
func (u *Uploader) Publish(ctx context.Context, a compiler.Artifact) error {
	return u.Upload(ctx, a.Path, a.Key, a.ContentType)
}

// Upload copies the file at path to the object for key.
func (u *Uploader) Upload(ctx context.Context, path, key, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := u.ObjectName(key)
	_, err = u.store.PutObject(ctx, u.bucket, name, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", u.bucket, name, err)
	}

	u.logger.Debug("File uploaded", "bucket", u.bucket, "name", name, "size", info.Size())
	return nil
}

// UploadTree uploads every regular file under root and returns how many
// were uploaded. It stops at the first failure.
func (u *Uploader) UploadTree(ctx context.Context, root string) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if err := u.Upload(ctx, p, filepath.ToSlash(rel), ""); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("upload tree %s: %w", root, err)
	}
	u.logger.Info("Uploaded output tree", "root", root, "bucket", u.bucket, "files", n)
	return n, nil
}
