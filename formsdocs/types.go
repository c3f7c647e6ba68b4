package formsdocs

import (
	"fmt"
	"strconv"

	"github.com/kbukum/aemkit/classify"
	"github.com/kbukum/aemkit/document"
)

// DeleteResponse is the answer to a successful deleteAssets call.
type DeleteResponse struct {
	RequestStatus string `json:"requestStatus"`
}

// Change is one asset a preview reports it would create or replace.
type Change struct {
	Path             string `json:"path"`
	Name             string `json:"name"`
	Create           bool   `json:"create"`
	NameValid        bool   `json:"nameValid"`
	Section          string `json:"section"`
	RelativeLocation string `json:"relativeLocation"`
}

// PreviewResponse is the answer to uploadFormsPreview. FileID names the
// staged upload for a following Upload call.
type PreviewResponse struct {
	FileID     string   `json:"fileId"`
	FileName   string   `json:"fileName,omitempty"`
	UploadType string   `json:"uploadType,omitempty"`
	Changes    []Change `json:"changes"`
}

// UploadResponse is the answer to uploadForms.
type UploadResponse struct {
	LastUploadedAssetPath string `json:"lastUploadedAssetPath"`
}

var deleteOperation = classify.Operation[DeleteResponse]{
	Name:   OpDelete,
	Marker: "/requestStatus",
	Accept: []string{"success"},
	Build: func(_ document.Document, marker string) (DeleteResponse, error) {
		return DeleteResponse{RequestStatus: marker}, nil
	},
}

var previewOperation = classify.Operation[PreviewResponse]{
	Name:   OpPreview,
	Marker: "/fileId",
	Build:  buildPreview,
}

var uploadOperation = classify.Operation[UploadResponse]{
	Name:   OpUpload,
	Marker: "/lastUploadedAssetPath",
	Build: func(_ document.Document, marker string) (UploadResponse, error) {
		return UploadResponse{LastUploadedAssetPath: marker}, nil
	},
}

func buildPreview(doc document.Document, fileID string) (PreviewResponse, error) {
	resp := PreviewResponse{FileID: fileID, Changes: []Change{}}
	var err error
	if resp.FileName, _, err = doc.At("/fileName"); err != nil {
		return PreviewResponse{}, err
	}
	if resp.UploadType, _, err = doc.At("/uploadType"); err != nil {
		return PreviewResponse{}, err
	}
	changes, err := doc.SubdocumentsAt("/changes/*")
	if err != nil {
		return PreviewResponse{}, err
	}
	for _, c := range changes {
		change, err := buildChange(c)
		if err != nil {
			return PreviewResponse{}, err
		}
		resp.Changes = append(resp.Changes, change)
	}
	return resp, nil
}

func buildChange(doc document.Document) (Change, error) {
	var c Change
	for _, f := range []struct {
		pointer document.Pointer
		target  *string
	}{
		{"/path", &c.Path},
		{"/name", &c.Name},
		{"/section", &c.Section},
		{"/relativeLocation", &c.RelativeLocation},
	} {
		v, _, err := doc.At(f.pointer)
		if err != nil {
			return Change{}, err
		}
		*f.target = v
	}
	var err error
	if c.Create, err = boolAt(doc, "/create"); err != nil {
		return Change{}, err
	}
	if c.NameValid, err = boolAt(doc, "/nameValid"); err != nil {
		return Change{}, err
	}
	return c, nil
}

// boolAt reads a boolean flag. An absent flag is false.
func boolAt(doc document.Document, p document.Pointer) (bool, error) {
	v, found, err := doc.At(p)
	if err != nil || !found {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", p, err)
	}
	return b, nil
}
