// Package assets delegates binary image payloads to Cloudinary and hands
// back publicly resolvable URLs.
package assets

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
	log *logrus.Logger
}

// NewCloudinaryStore builds an asset store from a cloudinary:// credential URL.
func NewCloudinaryStore(cloudinaryURL string, logger *logrus.Logger) (*CloudinaryStore, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL cannot be empty")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary client: %w", err)
	}

	return &CloudinaryStore{cld: cld, log: logger}, nil
}

// Upload stores the payload under the given folder scope and returns the
// delivery URL. Each asset gets a fresh public ID so re-uploads never
// overwrite one another.
func (s *CloudinaryStore) Upload(ctx context.Context, data io.Reader, scope string) (string, error) {
	publicID := uuid.NewString()

	resp, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:   scope,
		PublicID: publicID,
	})
	if err != nil {
		s.log.Errorf("Assets: Cloudinary upload failed: %v", err)
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	// The SDK reports API-level rejections in the response body with a nil
	// error, so the message field has to be checked as well.
	if resp.Error.Message != "" {
		s.log.Errorf("Assets: Cloudinary rejected upload: %s", resp.Error.Message)
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}

	s.log.Infof("Assets: Uploaded asset %s/%s", scope, publicID)
	return resp.SecureURL, nil
}
