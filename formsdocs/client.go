package formsdocs

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kbukum/aemkit/classify"
	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/logger"
	"github.com/kbukum/aemkit/observability"
	"github.com/kbukum/aemkit/validation"
)

// Endpoint paths.
const (
	PathManage = "/libs/fd/fm/content/manage.json"
	AssetRoot  = "/content/dam/formsanddocuments"
)

// Operation names; they are the func values the endpoint dispatches on.
const (
	OpDelete  = "deleteAssets"
	OpPreview = "uploadFormsPreview"
	OpUpload  = "uploadForms"
)

const charset = "UTF-8"

// Client manages assets under Forms & Documents. Server-reported failures
// come back as error variants; use Strict to turn them into errors.
type Client struct {
	manage  *httpclient.Client
	sink    logger.Sink
	metrics *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithSink sets the diagnostic sink. The default discards messages.
func WithSink(s logger.Sink) Option {
	return func(c *Client) { c.sink = s }
}

// WithMetrics sets the instruments used for classification metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client on adapter.
func New(adapter *httpclient.Adapter, opts ...Option) *Client {
	c := &Client{
		manage: adapter.Target(PathManage),
		sink:   logger.NopSink,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = logger.NopSink
	}
	return c
}

// Delete removes the asset or folder at target, relative to the Forms &
// Documents root.
//
//	POST manage.json?func=deleteAssets  assetPaths=/content/dam/formsanddocuments/<target>
func (c *Client) Delete(ctx context.Context, target string) (classify.Variant[DeleteResponse], error) {
	target = strings.Trim(target, "/")
	if err := validation.New().Required("target", target).RepositoryPath("target", target).Validate(); err != nil {
		return classify.Variant[DeleteResponse]{}, err
	}
	assetPath := AssetRoot + "/" + target
	c.sink.Emit(func() string { return "deleting " + assetPath })
	resp, err := c.manage.BuildMultipart().
		QueryParam("func", OpDelete).
		Add("assetPaths", assetPath).
		Add("_charset_", charset).
		Build().
		Send(ctx, httpclient.ContentTypeJSON)
	return classifyResponse(ctx, c, resp, err, deleteOperation)
}

// Preview stages content, sent as filename, for upload into folder and
// reports what the upload would change.
//
//	POST manage.json?func=uploadFormsPreview&folderPath=...&isIE=false  filename _charset_ file
func (c *Client) Preview(ctx context.Context, filename string, content []byte, folder string) (classify.Variant[PreviewResponse], error) {
	if err := validation.New().PathSegment("filename", filename).RepositoryPath("folder", folder).Validate(); err != nil {
		return classify.Variant[PreviewResponse]{}, err
	}
	b := c.previewBuilder(filename, folder).
		AddNamedBytes("file", filename, content, httpclient.ContentTypeOctetStream)
	return c.sendPreview(ctx, b, filename)
}

// PreviewFile is Preview for the file at path, sent under its base name.
func (c *Client) PreviewFile(ctx context.Context, path, folder string) (classify.Variant[PreviewResponse], error) {
	if err := validation.New().RegularFile("path", path).RepositoryPath("folder", folder).Validate(); err != nil {
		return classify.Variant[PreviewResponse]{}, err
	}
	filename := filepath.Base(path)
	b := c.previewBuilder(filename, folder).
		AddFile("file", path, httpclient.ContentTypeOctetStream)
	return c.sendPreview(ctx, b, filename)
}

func (c *Client) previewBuilder(filename, folder string) *httpclient.MultipartBuilder {
	return c.manage.BuildMultipart().
		QueryParam("func", OpPreview).
		QueryParam("folderPath", FolderPath(folder)).
		QueryParam("isIE", "false").
		Add("filename", filename).
		Add("_charset_", charset)
}

func (c *Client) sendPreview(ctx context.Context, b *httpclient.MultipartBuilder, filename string) (classify.Variant[PreviewResponse], error) {
	c.sink.Emit(func() string { return "previewing upload of " + filename })
	resp, err := b.Build().Send(ctx, httpclient.ContentTypeJSON)
	return classifyResponse(ctx, c, resp, err, previewOperation)
}

// Upload commits a previewed upload into folder.
//
//	POST manage.json?func=uploadForms&folderPath=...&fileId=...&uploadType=assets  _charset_
func (c *Client) Upload(ctx context.Context, fileID, folder string) (classify.Variant[UploadResponse], error) {
	if err := validation.New().Required("file_id", fileID).RepositoryPath("folder", folder).Validate(); err != nil {
		return classify.Variant[UploadResponse]{}, err
	}
	c.sink.Emit(func() string { return "uploading " + fileID + " into " + FolderPath(folder) })
	resp, err := c.manage.BuildMultipart().
		QueryParam("func", OpUpload).
		QueryParam("folderPath", FolderPath(folder)).
		QueryParam("fileId", fileID).
		QueryParam("uploadType", "assets").
		Add("_charset_", charset).
		Build().
		Send(ctx, httpclient.ContentTypeJSON)
	return classifyResponse(ctx, c, resp, err, uploadOperation)
}

// UploadFile previews the file at path and uploads it into folder. An error
// variant from the preview is returned as the upload's error variant.
func (c *Client) UploadFile(ctx context.Context, path, folder string) (classify.Variant[UploadResponse], error) {
	preview, err := c.PreviewFile(ctx, path, folder)
	if err != nil {
		return classify.Variant[UploadResponse]{}, err
	}
	if detail, failed := preview.Failure(); failed {
		return classify.Failed[UploadResponse](detail), nil
	}
	staged, _ := preview.Success()
	return c.Upload(ctx, staged.FileID, folder)
}

// FolderPath returns the repository path of folder below the Forms &
// Documents root. An empty folder is the root itself.
func FolderPath(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return AssetRoot
	}
	return AssetRoot + "/" + folder
}

// classifyResponse turns a manage.json answer into its variant. Transport
// and protocol failures name the operation.
func classifyResponse[S any](ctx context.Context, c *Client, resp *httpclient.Response, err error, op classify.Operation[S]) (classify.Variant[S], error) {
	if err != nil {
		err = errors.InOperation(op.Name, err)
		c.sink.Emit(func() string { return err.Error() })
		return classify.Variant[S]{}, err
	}
	v, err := classify.ClassifyResponse(ctx, resp, op, classify.Options{Metrics: c.metrics})
	if err == nil {
		if detail, failed := v.Failure(); failed {
			c.sink.Emit(func() string { return op.Name + ": server error " + detail.String() })
		}
	}
	return v, err
}
