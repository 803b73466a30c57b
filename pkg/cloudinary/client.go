// Package cloudinary uploads and removes hosted images.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/forkline/storefront/pkg/config"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Asset describes an uploaded image.
type Asset struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int    `json:"bytes"`
}

// Client stores images under one folder.
type Client struct {
	api    uploadAPI
	folder string
}

// New builds a client from configuration.
func New(cfg config.CloudinaryConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("cloudinary cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}
	return newWithAPI(&cld.Upload, cfg.Folder), nil
}

func newWithAPI(api uploadAPI, folder string) *Client {
	return &Client{api: api, folder: strings.Trim(strings.TrimSpace(folder), "/")}
}

// UploadImage stores file under publicID inside the configured folder.
func (c *Client) UploadImage(ctx context.Context, file io.Reader, publicID string) (*Asset, error) {
	res, err := c.api.Upload(ctx, file, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if res == nil {
		return nil, errors.New("upload image: empty response")
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("upload image: %s", res.Error.Message)
	}
	return &Asset{
		PublicID:  res.PublicID,
		SecureURL: res.SecureURL,
		Format:    res.Format,
		Width:     res.Width,
		Height:    res.Height,
		Bytes:     res.Bytes,
	}, nil
}

// DeleteImage removes a previously uploaded image. Missing images are not an
// error.
func (c *Client) DeleteImage(ctx context.Context, publicID string) error {
	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: "image"})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if res == nil {
		return nil
	}
	if res.Error.Message != "" {
		return fmt.Errorf("delete image: %s", res.Error.Message)
	}
	if res.Result != "" && res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("delete image: unexpected result %q", res.Result)
	}
	return nil
}
