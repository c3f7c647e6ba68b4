package packagemanager

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/kbukum/aemkit/classify"
	"github.com/kbukum/aemkit/errors"
)

// Strict wraps a Client and reports every server-side failure as an
// OPERATION_FAILED error, for callers that only handle errors.
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

// List returns the installed packages. A list status outside 2xx fails.
func (s *Strict) List(ctx context.Context) ([]Package, error) {
	list, err := s.client.List(ctx)
	if err != nil {
		return nil, err
	}
	if !list.Status.OK() {
		return nil, errors.OperationFailed(OpList,
			fmt.Sprintf("status code=%d, reason='%s'", list.Status.Code, list.Status.Text),
		).WithDetail("status_code", list.Status.Code)
	}
	return list.Packages, nil
}

// Upload uploads the file at filePath and returns the package path the
// server assigned.
func (s *Strict) Upload(ctx context.Context, filePath string) (string, error) {
	v, err := s.client.Upload(ctx, filePath)
	return uploadedPath(v, err)
}

// UploadReader uploads a package read from r under fileName and returns the
// package path the server assigned.
func (s *Strict) UploadReader(ctx context.Context, fileName string, r io.Reader) (string, error) {
	v, err := s.client.UploadReader(ctx, fileName, r)
	return uploadedPath(v, err)
}

// Install installs the package.
func (s *Strict) Install(ctx context.Context, group, file string) error {
	_, err := s.Execute(ctx, CommandInstall, group, file)
	return err
}

// Uninstall uninstalls the package.
func (s *Strict) Uninstall(ctx context.Context, group, file string) error {
	_, err := s.Execute(ctx, CommandUninstall, group, file)
	return err
}

// Delete deletes the package.
func (s *Strict) Delete(ctx context.Context, group, file string) error {
	_, err := s.Execute(ctx, CommandDelete, group, file)
	return err
}

// Execute runs command on the package and returns the server's response.
func (s *Strict) Execute(ctx context.Context, command, group, file string) (CommandResponse, error) {
	v, err := s.client.Execute(ctx, command, group, file)
	return succeeded(operationName(command), v, err)
}

// Deploy uploads the file at filePath and installs it into group.
func (s *Strict) Deploy(ctx context.Context, group, filePath string) (string, error) {
	uploaded, err := s.Upload(ctx, filePath)
	if err != nil {
		return "", err
	}
	return uploaded, s.Install(ctx, group, filepath.Base(filePath))
}

func uploadedPath(v classify.Variant[CommandResponse], err error) (string, error) {
	resp, err := succeeded(OpUpload, v, err)
	if err != nil {
		return "", err
	}
	switch {
	case resp.Path == nil:
		return "", errors.OperationFailed(OpUpload, "no path returned: "+resp.Msg)
	case *resp.Path == "":
		return "", errors.OperationFailed(OpUpload, "empty path returned: "+resp.Msg)
	}
	return *resp.Path, nil
}

// succeeded flattens a command variant: error variants and success=false
// both become OPERATION_FAILED.
func succeeded(op string, v classify.Variant[CommandResponse], err error) (CommandResponse, error) {
	if err != nil {
		return CommandResponse{}, err
	}
	resp, err := v.Unwrap(op)
	if err != nil {
		return CommandResponse{}, err
	}
	if !resp.Success {
		return resp, errors.OperationFailed(op, resp.Msg)
	}
	return resp, nil
}
