package packagemanager

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/aemkit/classify"
	"github.com/kbukum/aemkit/document"
	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/logger"
	"github.com/kbukum/aemkit/observability"
	"github.com/kbukum/aemkit/validation"
)

// Endpoint paths.
const (
	PathService  = "/crx/packmgr/service.jsp"
	PathJSON     = "/crx/packmgr/service/.json"
	PathPackages = PathJSON + "/etc/packages"
)

// Package commands.
const (
	CommandList      = "ls"
	CommandUpload    = "upload"
	CommandInstall   = "install"
	CommandUninstall = "uninstall"
	CommandDelete    = "delete"
)

// commands are the commands Execute accepts.
var commands = []string{CommandInstall, CommandUninstall, CommandDelete}

// Operation names used in errors, spans and metrics.
const (
	OpList      = "list packages"
	OpUpload    = "upload package"
	OpInstall   = "install package"
	OpUninstall = "uninstall package"
	OpDelete    = "delete package"
)

// Client talks to the CRX package manager. Server-reported failures come back
// as error variants; use Strict to turn them into errors.
type Client struct {
	adapter *httpclient.Adapter
	service *httpclient.Client
	json    *httpclient.Client
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
		adapter: adapter,
		service: adapter.Target(PathService),
		json:    adapter.Target(PathJSON),
		sink:    logger.NopSink,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = logger.NopSink
	}
	return c
}

// List returns the packages installed on the server.
//
//	GET /crx/packmgr/service.jsp?cmd=ls
//
// AEM labels the XML answer text/plain.
func (c *Client) List(ctx context.Context) (ListResponse, error) {
	c.sink.Emit(func() string { return "listing packages" })
	resp, err := c.service.BuildGet().
		QueryParam("cmd", CommandList).
		Build().
		Send(ctx, httpclient.ContentTypeTextPlain)
	if err != nil {
		return ListResponse{}, errors.InOperation(OpList, err)
	}
	if resp == nil {
		return ListResponse{}, errors.UnexpectedResponseShape(OpList, nil)
	}
	body, err := resp.ReadAll()
	if err != nil {
		return ListResponse{}, errors.UnexpectedResponseShape(OpList, nil).WithCause(err)
	}
	doc, err := document.ParseFor(resp.ContentType().String(), body)
	if err != nil {
		return ListResponse{}, errors.UnexpectedResponseShape(OpList, body).WithCause(err)
	}
	list, err := parseList(doc)
	if err != nil {
		return ListResponse{}, errors.UnexpectedResponseShape(OpList, body).WithCause(err)
	}
	c.sink.Emit(func() string {
		return fmt.Sprintf("listed %d packages (status %d %s)", len(list.Packages), list.Status.Code, list.Status.Text)
	})
	return list, nil
}

// Upload uploads the package file at filePath, replacing an existing package of
// the same name.
//
//	POST /crx/packmgr/service/.json  cmd=upload force=true package=@file
func (c *Client) Upload(ctx context.Context, filePath string) (classify.Variant[CommandResponse], error) {
	if err := validation.New().RegularFile("path", filePath).Validate(); err != nil {
		return classify.Variant[CommandResponse]{}, err
	}
	c.sink.Emit(func() string { return "uploading package " + filePath })
	resp, err := c.uploadBuilder().
		AddFile("package", filePath, httpclient.ContentTypeOctetStream).
		Build().
		Send(ctx, httpclient.ContentTypeJSON)
	return c.classify(ctx, OpUpload, resp, err)
}

// UploadReader uploads a package read from r and sent as fileName. If r is an
// io.Closer it is closed once the call finishes.
func (c *Client) UploadReader(ctx context.Context, fileName string, r io.Reader) (classify.Variant[CommandResponse], error) {
	if err := validation.New().PathSegment("file_name", fileName).Validate(); err != nil {
		return classify.Variant[CommandResponse]{}, err
	}
	c.sink.Emit(func() string { return "uploading package " + fileName })
	resp, err := c.uploadBuilder().
		AddNamedReader("package", fileName, r, httpclient.ContentTypeOctetStream).
		Build().
		Send(ctx, httpclient.ContentTypeJSON)
	return c.classify(ctx, OpUpload, resp, err)
}

func (c *Client) uploadBuilder() *httpclient.MultipartBuilder {
	return c.json.BuildMultipart().
		Add("cmd", CommandUpload).
		Add("force", "true")
}

// Install installs an uploaded package.
//
//	POST /crx/packmgr/service/.json/etc/packages/<group>/<file>  cmd=install
func (c *Client) Install(ctx context.Context, group, file string) (classify.Variant[CommandResponse], error) {
	return c.Execute(ctx, CommandInstall, group, file)
}

// Uninstall reverts an installed package.
func (c *Client) Uninstall(ctx context.Context, group, file string) (classify.Variant[CommandResponse], error) {
	return c.Execute(ctx, CommandUninstall, group, file)
}

// Delete removes a package from the server.
func (c *Client) Delete(ctx context.Context, group, file string) (classify.Variant[CommandResponse], error) {
	return c.Execute(ctx, CommandDelete, group, file)
}

// Execute posts command to the package identified by group and file.
func (c *Client) Execute(ctx context.Context, command, group, file string) (classify.Variant[CommandResponse], error) {
	if err := validation.New().OneOf("command", command, commands).Validate(); err != nil {
		return classify.Variant[CommandResponse]{}, err
	}
	if err := checkPackageRef(group, file); err != nil {
		return classify.Variant[CommandResponse]{}, err
	}
	target := PackagePath(group, file)
	c.sink.Emit(func() string { return command + " " + target })
	resp, err := c.adapter.Target(target).BuildMultipart().
		Add("cmd", command).
		Build().
		Send(ctx, httpclient.ContentTypeJSON)
	return c.classify(ctx, operationName(command), resp, err)
}

// PackagePath returns the command endpoint of a package.
func PackagePath(group, file string) string {
	return PathPackages + "/" + strings.Trim(group, "/") + "/" + file
}

func checkPackageRef(group, file string) error {
	return validation.New().
		Required("group", strings.Trim(group, "/")).
		RepositoryPath("group", group).
		PathSegment("file", file).
		Validate()
}

func operationName(command string) string {
	switch command {
	case CommandInstall:
		return OpInstall
	case CommandUninstall:
		return OpUninstall
	case CommandDelete:
		return OpDelete
	case CommandUpload:
		return OpUpload
	default:
		return command + " package"
	}
}

// classify turns a command response into its variant. Transport and
// protocol failures name the operation.
func (c *Client) classify(ctx context.Context, op string, resp *httpclient.Response, err error) (classify.Variant[CommandResponse], error) {
	if err != nil {
		err = errors.InOperation(op, err)
		c.sink.Emit(func() string { return err.Error() })
		return classify.Variant[CommandResponse]{}, err
	}
	v, err := classify.ClassifyResponse(ctx, resp, commandOperation(op), classify.Options{Metrics: c.metrics})
	if err == nil {
		c.sink.Emit(func() string { return describe(op, v) })
	}
	return v, err
}

func describe(op string, v classify.Variant[CommandResponse]) string {
	if detail, failed := v.Failure(); failed {
		return fmt.Sprintf("%s: server error %s", op, detail)
	}
	resp, _ := v.Success()
	return fmt.Sprintf("%s: success=%t msg=%q", op, resp.Success, resp.Msg)
}
