package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ProfileFolder = "mentorship_profiles"
	ReceiptFolder = "mentorship_receipts"
)

type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

// CloudinaryStore uploads raw files and signs direct browser uploads.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

func NewCloudinaryStore(url, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld, folder: folder, now: time.Now}, nil
}

func (c *CloudinaryStore) Upload(ctx context.Context, r io.Reader, publicID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       c.folder,
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// SignUpload creates a signature the frontend uses to upload a profile
// picture straight to Cloudinary.
func (c *CloudinaryStore) SignUpload(folder string) (*UploadSignature, error) {
	params, err := api.StructToParams(uploader.UploadParams{Folder: folder})
	if err != nil {
		return nil, fmt.Errorf("prepare signature params: %w", err)
	}

	timestamp := c.now().Unix()
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(params, c.cld.Config.Cloud.APISecret)
	if err != nil {
		return nil, fmt.Errorf("sign upload params: %w", err)
	}

	return &UploadSignature{
		Signature: signature,
		Timestamp: timestamp,
		APIKey:    c.cld.Config.Cloud.APIKey,
		CloudName: c.cld.Config.Cloud.CloudName,
		Folder:    folder,
	}, nil
}
