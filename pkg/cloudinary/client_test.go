package cloudinary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/forkline/storefront/pkg/config"
)

type stubAPI struct {
	uploadParams  uploader.UploadParams
	uploadResult  *uploader.UploadResult
	uploadErr     error
	destroyParams uploader.DestroyParams
	destroyResult *uploader.DestroyResult
	destroyErr    error
}

func (s *stubAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	s.uploadParams = params
	return s.uploadResult, s.uploadErr
}

func (s *stubAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	s.destroyParams = params
	return s.destroyResult, s.destroyErr
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(config.CloudinaryConfig{CloudName: "demo"}); err == nil {
		t.Fatal("expected credentials error")
	}
}

func TestUploadImage(t *testing.T) {
	stub := &stubAPI{uploadResult: &uploader.UploadResult{
		PublicID:  "forkline/menu/abc",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/forkline/menu/abc.jpg",
		Format:    "jpg",
		Width:     800,
		Height:    600,
		Bytes:     1024,
	}}
	client := newWithAPI(stub, "/forkline/menu/")

	asset, err := client.UploadImage(context.Background(), strings.NewReader("img"), "abc")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if stub.uploadParams.Folder != "forkline/menu" || stub.uploadParams.PublicID != "abc" || stub.uploadParams.ResourceType != "image" {
		t.Fatalf("unexpected params %+v", stub.uploadParams)
	}
	if asset.SecureURL == "" || asset.Width != 800 {
		t.Fatalf("unexpected asset %+v", asset)
	}
}

func TestUploadImageErrors(t *testing.T) {
	client := newWithAPI(&stubAPI{uploadErr: errors.New("network")}, "f")
	if _, err := client.UploadImage(context.Background(), strings.NewReader("x"), "id"); err == nil {
		t.Fatal("expected transport error")
	}

	client = newWithAPI(&stubAPI{uploadResult: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}, "f")
	if _, err := client.UploadImage(context.Background(), strings.NewReader("x"), "id"); err == nil || !strings.Contains(err.Error(), "Invalid image file") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestDeleteImage(t *testing.T) {
	stub := &stubAPI{destroyResult: &uploader.DestroyResult{Result: "not found"}}
	client := newWithAPI(stub, "f")
	if err := client.DeleteImage(context.Background(), "f/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if stub.destroyParams.PublicID != "f/abc" {
		t.Fatalf("unexpected params %+v", stub.destroyParams)
	}

	stub.destroyResult = &uploader.DestroyResult{Error: api.ErrorResp{Message: "denied"}}
	if err := client.DeleteImage(context.Background(), "f/abc"); err == nil {
		t.Fatal("expected api error")
	}
}
