// Package media proxies admin image uploads to the image host.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/forkline/storefront/pkg/cloudinary"
	"github.com/forkline/storefront/pkg/enums"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
)

const bytesPerMB = 1024 * 1024

type imageHost interface {
	UploadImage(ctx context.Context, file io.Reader, publicID string) (*cloudinary.Asset, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// Service exposes image upload semantics.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, publicID string) error
	MaxUploadBytes() int64
}

// UploadInput is one image received from the admin UI.
type UploadInput struct {
	Kind      enums.MediaKind
	FileName  string
	MimeType  string
	SizeBytes int64
	File      io.Reader
}

// UploadOutput describes the hosted image.
type UploadOutput struct {
	PublicID    string `json:"public_id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SizeBytes   int    `json:"size_bytes"`
}

type service struct {
	host     imageHost
	logg     *logger.Logger
	maxBytes int64
	newID    func() string
}

// NewService constructs a media service. maxUploadMB caps a single upload.
func NewService(host imageHost, logg *logger.Logger, maxUploadMB int64) (Service, error) {
	if host == nil {
		return nil, fmt.Errorf("image host required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		host:     host,
		logg:     logg,
		maxBytes: maxUploadMB * bytesPerMB,
		newID:    uuid.NewString,
	}, nil
}

func (s *service) MaxUploadBytes() int64 {
	return s.maxBytes
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadOutput, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("file must be at most %d bytes", s.maxBytes)).
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}

	declared, err := parseDeclaredMime(input.MimeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnsupported, err, "invalid content type")
	}
	if !isAllowedMime(input.Kind, declared) {
		return nil, unsupported(input.Kind, declared)
	}
	detected, body, err := sniffMime(input.File)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if detected != declared {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupported, "file content does not match its content type").
			WithDetails(map[string]any{"declared": declared, "detected": detected})
	}

	publicID := buildPublicID(input.Kind, s.newID(), input.FileName)
	ctx = s.logg.WithFields(ctx, map[string]any{"public_id": publicID, "content_type": declared, "size_bytes": input.SizeBytes})

	asset, err := s.host.UploadImage(ctx, body, publicID)
	if err != nil {
		s.logg.Error(ctx, "media.upload_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	s.logg.Info(ctx, "media.uploaded")

	return &UploadOutput{
		PublicID:    asset.PublicID,
		URL:         asset.SecureURL,
		ContentType: declared,
		Width:       asset.Width,
		Height:      asset.Height,
		SizeBytes:   asset.Bytes,
	}, nil
}

func (s *service) Delete(ctx context.Context, publicID string) error {
	publicID = strings.Trim(strings.TrimSpace(publicID), "/")
	if publicID == "" || strings.Contains(publicID, "..") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid public id")
	}
	if err := s.host.DeleteImage(ctx, publicID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	s.logg.Info(s.logg.WithField(ctx, "public_id", publicID), "media.deleted")
	return nil
}

func unsupported(kind enums.MediaKind, mimeType string) error {
	return pkgerrors.New(pkgerrors.CodeUnsupported, fmt.Sprintf("%s images must be %s", kind, allowedMimeDescription(kind))).
		WithDetails(map[string]any{"content_type": mimeType, "allowed": mimeTypesByKind[kind]})
}

// buildPublicID names the asset <kind>/<id>-<clean name without extension>.
func buildPublicID(kind enums.MediaKind, id, fileName string) string {
	clean := sanitizeFileName(fileName)
	clean = strings.TrimSuffix(clean, path.Ext(clean))
	clean = strings.Trim(clean, "-_.")
	if clean == "" {
		return fmt.Sprintf("%s/%s", kind, id)
	}
	return fmt.Sprintf("%s/%s-%s", kind, id, strings.ToLower(clean))
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
