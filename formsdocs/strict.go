package formsdocs

import (
	"context"

	"github.com/kbukum/aemkit/classify"
)

// Strict wraps a Client and reports server-side failures as OPERATION_FAILED
// errors carrying the server's description.
type Strict struct {
	client *Client
}

// NewStrict wraps client.
func NewStrict(client *Client) *Strict {
	return &Strict{client: client}
}

// Client returns the wrapped client.
func (s *Strict) Client() *Client {
	return s.client
}

// Delete removes target.
func (s *Strict) Delete(ctx context.Context, target string) error {
	v, err := s.client.Delete(ctx, target)
	if err != nil {
		return err
	}
	_, err = v.Unwrap(OpDelete)
	return err
}

// PreviewFile stages the file at path and returns the staged file id.
func (s *Strict) PreviewFile(ctx context.Context, path, folder string) (PreviewResponse, error) {
	v, err := s.client.PreviewFile(ctx, path, folder)
	if err != nil {
		return PreviewResponse{}, err
	}
	return v.Unwrap(OpPreview)
}

// Upload commits a previewed upload and returns the last uploaded asset path.
func (s *Strict) Upload(ctx context.Context, fileID, folder string) (string, error) {
	v, err := s.client.Upload(ctx, fileID, folder)
	return assetPath(v, err)
}

// UploadFile previews and uploads the file at path and returns the last
// uploaded asset path.
func (s *Strict) UploadFile(ctx context.Context, path, folder string) (string, error) {
	v, err := s.client.UploadFile(ctx, path, folder)
	return assetPath(v, err)
}

func assetPath(v classify.Variant[UploadResponse], err error) (string, error) {
	if err != nil {
		return "", err
	}
	resp, err := v.Unwrap(OpUpload)
	if err != nil {
		return "", err
	}
	return resp.LastUploadedAssetPath, nil
}
