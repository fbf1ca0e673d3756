// Package upload stores submission attachments with Cloudinary.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"formzen/internal/domain"
	"formzen/internal/domain/models"
	"formzen/internal/metrics"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds account credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	// Folder groups uploads in the media library (optional)
	Folder string
	// UploadURL overrides the SDK's upload API prefix (tests)
	UploadURL string
}

// CloudinaryClient uploads attachments using signed uploads
type CloudinaryClient struct {
	config CloudinaryConfig
	cld    *cloudinary.Cloudinary
	logger *slog.Logger
}

// NewCloudinaryClient creates a new upload client. Missing credentials are
// reported per upload as a ConfigurationError.
func NewCloudinaryClient(cfg CloudinaryConfig, logger *slog.Logger) *CloudinaryClient {
	c := &CloudinaryClient{config: cfg, logger: logger}
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return c
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		logger.Warn("cloudinary client disabled", "error", err)
		return c
	}
	if cfg.UploadURL != "" {
		cld.Config.API.UploadPrefix = cfg.UploadURL
	}
	c.cld = cld

	return c
}

// Upload sends one attachment to Cloudinary and returns its secure URL
func (c *CloudinaryClient) Upload(ctx context.Context, field string, file models.Attachment) (*models.UploadedFile, error) {
	if c.cld == nil {
		return nil, &domain.ConfigurationError{Setting: "CLOUDINARY_CLOUD_NAME/CLOUDINARY_API_KEY/CLOUDINARY_API_SECRET"}
	}

	start := time.Now()
	uploaded, err := c.upload(ctx, file)
	metrics.UploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()

	c.logger.Info("attachment uploaded",
		"field", field,
		"filename", file.Filename,
		"bytes", file.Size,
		"public_id", uploaded.PublicID,
	)

	return uploaded, nil
}

func (c *CloudinaryClient) upload(ctx context.Context, file models.Attachment) (*models.UploadedFile, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer src.Close()

	result, err := c.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		ResourceType: "auto",
		Folder:       c.config.Folder,
	})
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return nil, errors.New("upload response has no secure_url")
	}

	return &models.UploadedFile{URL: result.SecureURL, PublicID: result.PublicID}, nil
}
