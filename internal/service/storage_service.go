package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/storage"
)

type avatarSetter interface {
	SetAvatar(ctx context.Context, id, url string) error
}

type resumeSetter interface {
	SetResume(ctx context.Context, id, objectKey string) error
}

type logoSetter interface {
	SetLogo(ctx context.Context, id, url string) error
}

// Upload carries an incoming multipart file.
type Upload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// Download is an opened stored object ready to stream.
type Download struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
}

// StorageService validates uploads, routes them to buckets and resolves
// download URLs. Private buckets are only reachable through signed tokens.
type StorageService struct {
	store  *storage.BucketStorage
	signer *storage.SignedURLSigner
	logger *zap.Logger

	maxSizeBytes int64

	profiles  resumeSetter
	avatars   avatarSetter
	companies logoSetter
}

var imageMIMEs = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// NewStorageService constructs StorageService.
func NewStorageService(store *storage.BucketStorage, signer *storage.SignedURLSigner, profiles interface {
	resumeSetter
	avatarSetter
}, companies logoSetter, maxSizeBytes int64, logger *zap.Logger) *StorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSizeBytes <= 0 {
		maxSizeBytes = 10 << 20
	}
	return &StorageService{
		store:        store,
		signer:       signer,
		logger:       logger,
		maxSizeBytes: maxSizeBytes,
		profiles:     profiles,
		avatars:      profiles,
		companies:    companies,
	}
}

// UploadAvatar stores a profile picture and records its public URL.
func (s *StorageService) UploadAvatar(ctx context.Context, userID string, upload Upload) (string, error) {
	ext, err := s.checkImage(upload)
	if err != nil {
		return "", err
	}
	object := userID + "/" + uuid.NewString() + ext
	if err := s.store.SaveStream(storage.BucketAvatars, object, upload.Content); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store avatar")
	}
	url, err := s.store.PublicURL(storage.BucketAvatars, object)
	if err != nil {
		return "", err
	}
	if err := s.avatars.SetAvatar(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// UploadResume stores a CV in the private resumes bucket and records the
// object key on the profile. The caller receives a time-limited signed URL.
func (s *StorageService) UploadResume(ctx context.Context, userID string, upload Upload) (string, time.Time, error) {
	if err := s.checkSize(upload); err != nil {
		return "", time.Time{}, err
	}
	if upload.MimeType != "application/pdf" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "resume must be a PDF")
	}
	object := userID + "/" + uuid.NewString() + ".pdf"
	if err := s.store.SaveStream(storage.BucketResumes, object, upload.Content); err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
	}
	if err := s.profiles.SetResume(ctx, userID, object); err != nil {
		return "", time.Time{}, err
	}
	return s.signer.Generate(storage.BucketResumes, object)
}

// UploadCompanyLogo stores a logo and records its public URL on the company.
func (s *StorageService) UploadCompanyLogo(ctx context.Context, companyID string, upload Upload) (string, error) {
	ext, err := s.checkImage(upload)
	if err != nil {
		return "", err
	}
	object := companyID + "/" + uuid.NewString() + ext
	if err := s.store.SaveStream(storage.BucketCompanyLogos, object, upload.Content); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store logo")
	}
	url, err := s.store.PublicURL(storage.BucketCompanyLogos, object)
	if err != nil {
		return "", err
	}
	if err := s.companies.SetLogo(ctx, companyID, url); err != nil {
		return "", err
	}
	return url, nil
}

// UploadCourseThumbnail stores a thumbnail and returns its public URL; the
// course record carries the URL through the regular course update flow.
func (s *StorageService) UploadCourseThumbnail(_ context.Context, courseID string, upload Upload) (string, error) {
	ext, err := s.checkImage(upload)
	if err != nil {
		return "", err
	}
	object := courseID + "/" + uuid.NewString() + ext
	if err := s.store.SaveStream(storage.BucketCourseThumbnails, object, upload.Content); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store thumbnail")
	}
	return s.store.PublicURL(storage.BucketCourseThumbnails, object)
}

// ResumeURL issues a fresh signed URL for the caller's own resume.
func (s *StorageService) ResumeURL(objectKey string) (string, time.Time, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "no resume uploaded")
	}
	return s.signer.Generate(storage.BucketResumes, objectKey)
}

// OpenSigned resolves a signed token to the stored file.
func (s *StorageService) OpenSigned(token string) (*Download, error) {
	bucket, object, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.store.Open(bucket, object)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "stored file not found")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat stored file")
	}
	return &Download{
		File:      file,
		Filename:  path.Base(object),
		MimeType:  mimeForObject(object),
		SizeBytes: info.Size(),
	}, nil
}

func (s *StorageService) checkSize(upload Upload) error {
	if upload.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if upload.Size > s.maxSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", s.maxSizeBytes))
	}
	return nil
}

func (s *StorageService) checkImage(upload Upload) (string, error) {
	if err := s.checkSize(upload); err != nil {
		return "", err
	}
	ext, ok := imageMIMEs[upload.MimeType]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "file must be a JPEG, PNG or WebP image")
	}
	return ext, nil
}

func mimeForObject(object string) string {
	switch strings.ToLower(path.Ext(object)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
