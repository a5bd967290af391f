// Package storage uploads report photos and returns their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Cloudinary stores photos on the Cloudinary image host.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	logger *zap.SugaredLogger
}

// NewCloudinary builds an uploader from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string, logger *zap.SugaredLogger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, logger: logger}, nil
}

// Upload sends the image and returns its HTTPS URL.
func (c *Cloudinary) Upload(ctx context.Context, content io.Reader, contentType, folder string) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary upload: empty secure url")
	}
	c.logger.Infow("Photo uploaded", "public_id", res.PublicID, "bytes", res.Bytes, "content_type", contentType)
	return res.SecureURL, nil
}
