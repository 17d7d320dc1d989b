package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-app/skillbridge-api/internal/service"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/response"
)

// StorageHandler manages file upload and signed download endpoints.
type StorageHandler struct {
	storage  *service.StorageService
	profiles profileResolver
}

// NewStorageHandler constructs StorageHandler.
func NewStorageHandler(storage *service.StorageService, profiles profileResolver) *StorageHandler {
	return &StorageHandler{storage: storage, profiles: profiles}
}

// UploadAvatar godoc
// @Summary Upload profile avatar
// @Tags Storage
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope
// @Router /storage/avatar [post]
func (h *StorageHandler) UploadAvatar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	upload, cleanup, err := formUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	url, err := h.storage.UploadAvatar(c.Request.Context(), claims.UserID, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": url}, nil)
}

// UploadResume godoc
// @Summary Upload resume PDF
// @Tags Storage
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF"
// @Success 200 {object} response.Envelope
// @Router /storage/resume [post]
func (h *StorageHandler) UploadResume(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	upload, cleanup, err := formUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	token, expiresAt, err := h.storage.UploadResume(c.Request.Context(), claims.UserID, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"download_token": token, "expires_at": expiresAt}, nil)
}

// UploadCompanyLogo godoc
// @Summary Upload company logo
// @Tags Storage
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Company ID"
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope
// @Router /storage/companies/{id}/logo [post]
func (h *StorageHandler) UploadCompanyLogo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	companyID := c.Param("id")

	profile, err := h.profiles.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if profile.CompanyID == nil || *profile.CompanyID != companyID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "company does not belong to this account"))
		return
	}

	upload, cleanup, err := formUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	url, err := h.storage.UploadCompanyLogo(c.Request.Context(), companyID, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": url}, nil)
}

// UploadCourseThumbnail godoc
// @Summary Upload course thumbnail
// @Tags Storage
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope
// @Router /storage/courses/{id}/thumbnail [post]
func (h *StorageHandler) UploadCourseThumbnail(c *gin.Context) {
	upload, cleanup, err := formUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	url, err := h.storage.UploadCourseThumbnail(c.Request.Context(), c.Param("id"), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": url}, nil)
}

// ResumeURL godoc
// @Summary Get a fresh signed URL for own resume
// @Tags Storage
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /storage/resume [get]
func (h *StorageHandler) ResumeURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, expiresAt, err := h.storage.ResumeURL(profile.ResumeURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"download_token": token, "expires_at": expiresAt}, nil)
}

// Download godoc
// @Summary Download a private object via signed token
// @Tags Storage
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /storage/download [get]
func (h *StorageHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	result, err := h.storage.OpenSigned(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}

func formUpload(c *gin.Context) (service.Upload, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, func() {}, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return service.Upload{}, func() {}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	upload := service.Upload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  src,
	}
	return upload, func() { src.Close() }, nil
}
