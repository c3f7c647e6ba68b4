package packagemanager

import (
	"strconv"

	"github.com/kbukum/aemkit/classify"
	"github.com/kbukum/aemkit/document"
	"github.com/kbukum/aemkit/errors"
)

// Param is one request parameter echoed back by the list command.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Package is one package record of a list response. Dates and sizes are kept
// as the text AEM sends; empty elements become empty strings.
type Package struct {
	Group          string `json:"group"`
	Name           string `json:"name"`
	Version        string `json:"version"`
	DownloadName   string `json:"downloadName"`
	Size           string `json:"size"`
	Created        string `json:"created"`
	CreatedBy      string `json:"createdBy"`
	LastModified   string `json:"lastModified"`
	LastModifiedBy string `json:"lastModifiedBy"`
	LastUnpacked   string `json:"lastUnpacked"`
	LastUnpackedBy string `json:"lastUnpackedBy"`
}

// Status is the status element of a list response.
type Status struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

// OK reports whether the status code is 2xx.
func (s Status) OK() bool {
	return s.Code >= 200 && s.Code <= 299
}

// ListResponse is the parsed answer to cmd=ls.
type ListResponse struct {
	Request  []Param   `json:"request"`
	Packages []Package `json:"packages"`
	Status   Status    `json:"status"`
}

// CommandResponse is the answer to upload, install, uninstall and delete.
type CommandResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	// Path is nil when the server sent none.
	Path *string `json:"path,omitempty"`
}

// XML pointers into a list response.
const (
	pointerParams   document.Pointer = "/crx/request/param"
	pointerPackages document.Pointer = "/crx/response/data/packages/package"
	pointerStatus   document.Pointer = "/crx/response/status"
	pointerCode     document.Pointer = "/crx/response/status/@code"
)

// parseList reads a list response. Every package field and the status are
// required.
func parseList(doc document.Document) (ListResponse, error) {
	var out ListResponse

	params, err := doc.SubdocumentsAt(pointerParams)
	if err != nil {
		return out, err
	}
	out.Request = make([]Param, 0, len(params))
	for _, p := range params {
		var param Param
		if err := require(p, []field{
			{"/param/@name", &param.Name},
			{"/param/@value", &param.Value},
		}); err != nil {
			return out, err
		}
		out.Request = append(out.Request, param)
	}

	packages, err := doc.SubdocumentsAt(pointerPackages)
	if err != nil {
		return out, err
	}
	out.Packages = make([]Package, 0, len(packages))
	for _, p := range packages {
		var pkg Package
		if err := require(p, []field{
			{"/package/group", &pkg.Group},
			{"/package/name", &pkg.Name},
			{"/package/version", &pkg.Version},
			{"/package/downloadName", &pkg.DownloadName},
			{"/package/size", &pkg.Size},
			{"/package/created", &pkg.Created},
			{"/package/createdBy", &pkg.CreatedBy},
			{"/package/lastModified", &pkg.LastModified},
			{"/package/lastModifiedBy", &pkg.LastModifiedBy},
			{"/package/lastUnpacked", &pkg.LastUnpacked},
			{"/package/lastUnpackedBy", &pkg.LastUnpackedBy},
		}); err != nil {
			return out, err
		}
		out.Packages = append(out.Packages, pkg)
	}

	var code string
	if err := require(doc, []field{
		{pointerCode, &code},
		{pointerStatus, &out.Status.Text},
	}); err != nil {
		return out, err
	}
	out.Status.Code, err = strconv.Atoi(code)
	if err != nil {
		return out, errors.InvalidInput("status code", err.Error()).WithCause(err)
	}
	return out, nil
}

type field struct {
	pointer document.Pointer
	target  *string
}

func require(doc document.Document, fields []field) error {
	for _, f := range fields {
		value, ok, err := doc.At(f.pointer)
		if err != nil {
			return err
		}
		if !ok {
			return errors.InvalidInput(f.pointer.String(), "missing from response")
		}
		*f.target = value
	}
	return nil
}

// commandOperation classifies a package command response on its /success
// marker.
func commandOperation(name string) classify.Operation[CommandResponse] {
	return classify.Operation[CommandResponse]{
		Name:   name,
		Marker: "/success",
		Accept: []string{"true", "false"},
		Build: func(doc document.Document, marker string) (CommandResponse, error) {
			ok, err := strconv.ParseBool(marker)
			if err != nil {
				return CommandResponse{}, err
			}
			resp := CommandResponse{Success: ok}
			if resp.Msg, _, err = doc.At("/msg"); err != nil {
				return CommandResponse{}, err
			}
			path, found, err := doc.At("/path")
			if err != nil {
				return CommandResponse{}, err
			}
			if found {
				resp.Path = &path
			}
			return resp, nil
		},
	}
}
