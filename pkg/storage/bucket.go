package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Well-known buckets used by the application.
const (
	BucketResumes          = "resumes"
	BucketAvatars          = "avatars"
	BucketCompanyLogos     = "company-logos"
	BucketCourseThumbnails = "course-thumbnails"
	BucketReports          = "reports"
)

// publicBuckets hold assets served without signing. Resumes stay private.
var publicBuckets = map[string]struct{}{
	BucketAvatars:          {},
	BucketCompanyLogos:     {},
	BucketCourseThumbnails: {},
}

// IsPublicBucket reports whether objects in the bucket are world readable.
func IsPublicBucket(bucket string) bool {
	_, ok := publicBuckets[bucket]
	return ok
}

// KnownBucket reports whether the bucket name is one the app manages.
func KnownBucket(bucket string) bool {
	switch bucket {
	case BucketResumes, BucketAvatars, BucketCompanyLogos, BucketCourseThumbnails, BucketReports:
		return true
	}
	return false
}

// BucketStorage persists bucketed objects on disk under a base directory.
type BucketStorage struct {
	baseDir   string
	publicURL string
}

// NewBucketStorage ensures the bucket directories exist and returns a handle.
// publicURL is the externally reachable base used to build public object URLs.
func NewBucketStorage(baseDir, publicURL string) (*BucketStorage, error) {
	if baseDir == "" {
		baseDir = "./storage"
	}
	for _, bucket := range []string{BucketResumes, BucketAvatars, BucketCompanyLogos, BucketCourseThumbnails, BucketReports} {
		if err := os.MkdirAll(filepath.Join(baseDir, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket directory %s: %w", bucket, err)
		}
	}
	return &BucketStorage{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Save writes the given bytes to bucket/object.
func (s *BucketStorage) Save(bucket, object string, data []byte) error {
	target, err := s.resolve(bucket, object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare bucket directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// SaveStream copies from reader into bucket/object.
func (s *BucketStorage) SaveStream(bucket, object string, r io.Reader) error {
	target, err := s.resolve(bucket, object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare bucket directory: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write object stream: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored object.
func (s *BucketStorage) Open(bucket, object string) (*os.File, error) {
	target, err := s.resolve(bucket, object)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes a stored object if present.
func (s *BucketStorage) Delete(bucket, object string) error {
	target, err := s.resolve(bucket, object)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PublicURL builds a direct URL for an object in a public bucket.
func (s *BucketStorage) PublicURL(bucket, object string) (string, error) {
	if !IsPublicBucket(bucket) {
		return "", fmt.Errorf("bucket %s is not public", bucket)
	}
	return fmt.Sprintf("%s/files/%s/%s", s.publicURL, bucket, url.PathEscape(object)), nil
}

// CleanupOlderThan removes objects older than the provided TTL and returns deleted names.
func (s *BucketStorage) CleanupOlderThan(bucket string, ttl time.Duration) ([]string, error) {
	root := filepath.Join(s.baseDir, bucket)
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup bucket %s: %w", bucket, err)
	}
	return deleted, nil
}

func (s *BucketStorage) resolve(bucket, object string) (string, error) {
	if !KnownBucket(bucket) {
		return "", fmt.Errorf("unknown bucket %s", bucket)
	}
	clean := path.Clean("/" + object)
	if clean == "/" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object name %q", object)
	}
	return filepath.Join(s.baseDir, bucket, filepath.FromSlash(clean)), nil
}
