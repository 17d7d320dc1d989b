package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/pkg/storage"
)

type stubMediaProfiles struct {
	avatarURL string
	resumeKey string
}

func (s *stubMediaProfiles) SetAvatar(_ context.Context, _ string, url string) error {
	s.avatarURL = url
	return nil
}

func (s *stubMediaProfiles) SetResume(_ context.Context, _ string, objectKey string) error {
	s.resumeKey = objectKey
	return nil
}

type stubMediaCompanies struct {
	logoURL string
}

func (s *stubMediaCompanies) SetLogo(_ context.Context, _ string, url string) error {
	s.logoURL = url
	return nil
}

func newStorageFixture(t *testing.T) (*StorageService, *stubMediaProfiles, *stubMediaCompanies) {
	t.Helper()
	store, err := storage.NewBucketStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	profiles := &stubMediaProfiles{}
	companies := &stubMediaCompanies{}
	return NewStorageService(store, signer, profiles, companies, 1<<20, nil), profiles, companies
}

func TestUploadAvatarStoresAndSetsProfileURL(t *testing.T) {
	svc, profiles, _ := newStorageFixture(t)

	upload := Upload{Filename: "me.png", Size: 4, MimeType: "image/png", Content: strings.NewReader("data")}
	url, err := svc.UploadAvatar(context.Background(), "usr-1", upload)

	require.NoError(t, err)
	assert.Contains(t, url, "/files/avatars/usr-1")
	assert.Equal(t, url, profiles.avatarURL)
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	svc, _, _ := newStorageFixture(t)

	upload := Upload{Filename: "me.pdf", Size: 4, MimeType: "application/pdf", Content: strings.NewReader("data")}
	_, err := svc.UploadAvatar(context.Background(), "usr-1", upload)

	require.Error(t, err)
}

func TestUploadResumeIssuesSignedURL(t *testing.T) {
	svc, profiles, _ := newStorageFixture(t)

	upload := Upload{Filename: "cv.pdf", Size: 4, MimeType: "application/pdf", Content: strings.NewReader("data")}
	token, expires, err := svc.UploadResume(context.Background(), "usr-1", upload)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expires.After(time.Now()))
	assert.True(t, strings.HasPrefix(profiles.resumeKey, "usr-1/"))
}

func TestUploadResumeRejectsOversizedFile(t *testing.T) {
	svc, _, _ := newStorageFixture(t)

	upload := Upload{Filename: "cv.pdf", Size: 2 << 20, MimeType: "application/pdf", Content: strings.NewReader("data")}
	_, _, err := svc.UploadResume(context.Background(), "usr-1", upload)

	require.Error(t, err)
}

func TestUploadCompanyLogoSetsCompanyURL(t *testing.T) {
	svc, _, companies := newStorageFixture(t)

	upload := Upload{Filename: "logo.jpg", Size: 4, MimeType: "image/jpeg", Content: strings.NewReader("data")}
	url, err := svc.UploadCompanyLogo(context.Background(), "comp-1", upload)

	require.NoError(t, err)
	assert.Equal(t, url, companies.logoURL)
}

func TestOpenSignedRoundTrip(t *testing.T) {
	svc, _, _ := newStorageFixture(t)

	upload := Upload{Filename: "cv.pdf", Size: 9, MimeType: "application/pdf", Content: strings.NewReader("hello cv!")}
	token, _, err := svc.UploadResume(context.Background(), "usr-1", upload)
	require.NoError(t, err)

	download, err := svc.OpenSigned(token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, "application/pdf", download.MimeType)
	assert.Equal(t, int64(9), download.SizeBytes)
}

func TestOpenSignedRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newStorageFixture(t)

	_, err := svc.OpenSigned("not-a-token")
	require.Error(t, err)
}
