package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	BucketServiceImages = "service-images"
	BucketAvatars       = "avatars"

	DefaultMaxUploadBytes = 5 << 20
)

var (
	ErrUnknownBucket   = errors.New("storage: unknown bucket")
	ErrTooLarge        = errors.New("storage: file too large")
	ErrUnsupportedType = errors.New("storage: only images are accepted")
	ErrEmptyFile       = errors.New("storage: empty file")
)

// Object describes a stored upload.
type Object struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	PublicURL   string `json:"publicUrl"`
}

// Uploader validates image uploads and stores them in a FileStore.
type Uploader struct {
	store    *FileStore
	baseURL  string
	maxBytes int64
}

func NewUploader(store *FileStore, baseURL string, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{store: store, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload writes data to bucket/objectPath and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, bucket, objectPath string, data []byte) (string, error) {
	if !knownBucket(bucket) {
		return "", ErrUnknownBucket
	}
	key, err := u.store.Write(ctx, path.Join(bucket, objectPath), data)
	if err != nil {
		return "", err
	}
	return u.baseURL + "/" + key, nil
}

// UploadImage sniffs data, names it with a random id and the detected extension,
// and stores it. Avatars are kept under the owner's directory.
func (u *Uploader) UploadImage(ctx context.Context, bucket, ownerID string, data []byte) (*Object, error) {
	if !knownBucket(bucket) {
		return nil, ErrUnknownBucket
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > u.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, u.maxBytes)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mt.String())
	}
	name := uuid.NewString() + mt.Extension()
	objectPath := name
	if bucket == BucketAvatars {
		if strings.TrimSpace(ownerID) == "" {
			return nil, errors.New("storage: avatar owner is required")
		}
		objectPath = path.Join(ownerID, name)
	}
	url, err := u.Upload(ctx, bucket, objectPath, data)
	if err != nil {
		return nil, err
	}
	return &Object{
		Bucket:      bucket,
		Path:        objectPath,
		ContentType: mt.String(),
		Size:        len(data),
		PublicURL:   url,
	}, nil
}

func knownBucket(bucket string) bool {
	return bucket == BucketServiceImages || bucket == BucketAvatars
}
