package formsdocs

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/aemkit/aemtest"
	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/httpclient"
)

func newClient(t *testing.T, opts ...Option) (*Client, *aemtest.Server) {
	t.Helper()
	srv := aemtest.Start(t)
	adapter, err := httpclient.New(srv.ClientConfig())
	if err != nil {
		t.Fatal(err)
	}
	return New(adapter, opts...), srv
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) *errors.AppError {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
	return appErr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFolderPath(t *testing.T) {
	tests := []struct {
		folder, want string
	}{
		{"", "/content/dam/formsanddocuments"},
		{"/", "/content/dam/formsanddocuments"},
		{"sample-of", "/content/dam/formsanddocuments/sample-of"},
		{"/a/b/", "/content/dam/formsanddocuments/a/b"},
	}
	for _, tt := range tests {
		if got := FolderPath(tt.folder); got != tt.want {
			t.Errorf("FolderPath(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestDelete(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "deleteAssets").Reply(aemtest.JSON(aemtest.DeleteSuccessJSON))

	v, err := c.Delete(context.Background(), "sample-of")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := v.Success()
	if !ok || got.RequestStatus != "success" {
		t.Errorf("unexpected variant %+v (ok=%v)", got, ok)
	}

	rec, _ := srv.LastRequest()
	if diff := cmp.Diff([]string{"assetPaths", "_charset_"}, rec.FieldNames()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if v, _ := rec.Field("assetPaths"); v != "/content/dam/formsanddocuments/sample-of" {
		t.Errorf("unexpected assetPaths %q", v)
	}
	if v, _ := rec.Field("_charset_"); v != "UTF-8" {
		t.Errorf("unexpected _charset_ %q", v)
	}
}

func TestDelete_ErrorVariant(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).Reply(aemtest.JSON(aemtest.DeleteFailureJSON))

	v, err := c.Delete(context.Background(), "sample-of")
	if err != nil {
		t.Fatal(err)
	}
	detail, failed := v.Failure()
	if !failed {
		t.Fatal("expected error variant")
	}
	if detail.Code != "ALC-FMG-600-009" || detail.Type != "error" {
		t.Errorf("unexpected detail %+v", detail)
	}
	if diff := cmp.Diff([]string{"/content/dam/formsanddocuments/sample-of"}, detail.MessageArgs); diff != "" {
		t.Errorf("message args mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete_Unexpected(t *testing.T) {
	tests := []struct {
		name  string
		reply aemtest.Reply
		code  errors.ErrorCode
	}{
		{"unknown status", aemtest.JSONString(`{"requestStatus":"failure"}`), errors.ErrCodeUnexpectedMarkerValue},
		{"unknown shape", aemtest.JSONString(`{"result":"ok"}`), errors.ErrCodeUnexpectedResponseShape},
		{"no content", aemtest.NoContent(), errors.ErrCodeUnexpectedResponseShape},
		{"login page", aemtest.HTML(http.StatusOK, "<html></html>"), errors.ErrCodeProtocolViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newClient(t)
			srv.On(http.MethodPost, aemtest.PathFormsManager).Reply(tt.reply)
			_, err := c.Delete(context.Background(), "x")
			assertCode(t, err, tt.code)
		})
	}
}

func TestDelete_EmptyTarget(t *testing.T) {
	c, srv := newClient(t)
	for _, target := range []string{"", "/", "forms/../../etc"} {
		_, err := c.Delete(context.Background(), target)
		assertCode(t, err, errors.ErrCodeInvalidInput)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestPreview(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadFormsPreview").Reply(aemtest.JSON(aemtest.PreviewSuccessJSON))

	v, err := c.Preview(context.Background(), "sample-of-0.0.1-SNAPSHOT.zip", []byte("zip-bytes"), "")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := v.Success()
	if !ok {
		t.Fatal("expected success variant")
	}
	if got.FileID != aemtest.PreviewFileID || got.FileName != "sample-of-0.0.1-SNAPSHOT.zip" || got.UploadType != "assets" {
		t.Errorf("unexpected preview %+v", got)
	}
	wantFirst := Change{
		Path:             "/content/dam/formsanddocuments/sample-of/Images/sampleImage1.jpg",
		Name:             "sampleImage1.jpg",
		Create:           true,
		NameValid:        true,
		Section:          "Forms & Documents",
		RelativeLocation: "/sample-of/Images",
	}
	if len(got.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got.Changes))
	}
	if diff := cmp.Diff(wantFirst, got.Changes[0]); diff != "" {
		t.Errorf("change mismatch (-want +got):\n%s", diff)
	}

	rec, _ := srv.LastRequest()
	if rec.Query.Get("folderPath") != "/content/dam/formsanddocuments" || rec.Query.Get("isIE") != "false" {
		t.Errorf("unexpected query %q", rec.RawQuery)
	}
	if diff := cmp.Diff([]string{"filename", "_charset_", "file"}, rec.FieldNames()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	part, _ := rec.Part("file")
	if part.FileName != "sample-of-0.0.1-SNAPSHOT.zip" || string(part.Data) != "zip-bytes" || part.ContentType != "application/octet-stream" {
		t.Errorf("unexpected file part %+v", part)
	}
}

func TestPreview_ChangeFlags(t *testing.T) {
	tests := []struct {
		name   string
		change string
		want   Change
		code   errors.ErrorCode
	}{
		{"string flags", `{"name":"a.xdp","create":"false","nameValid":"true"}`, Change{Name: "a.xdp", NameValid: true}, ""},
		{"absent flags", `{"name":"a.xdp"}`, Change{Name: "a.xdp"}, ""},
		{"malformed create", `{"name":"a.xdp","create":"maybe","nameValid":true}`, Change{}, errors.ErrCodeUnexpectedResponseShape},
		{"malformed nameValid", `{"name":"a.xdp","create":true,"nameValid":"yes"}`, Change{}, errors.ErrCodeUnexpectedResponseShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newClient(t)
			body := `{"fileId":"1","fileName":"f.zip","uploadType":"assets","changes":[` + tt.change + `]}`
			srv.On(http.MethodPost, aemtest.PathFormsManager).Reply(aemtest.JSONString(body))
			v, err := c.Preview(context.Background(), "f.zip", []byte("zip"), "")
			if tt.code != "" {
				assertCode(t, err, tt.code)
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			got, _ := v.Success()
			if diff := cmp.Diff([]Change{tt.want}, got.Changes); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreviewFile(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).Reply(aemtest.JSON(aemtest.PreviewFailureJSON))

	v, err := c.PreviewFile(context.Background(), writeFile(t, "forms.zip", "bad"), "sample-of")
	if err != nil {
		t.Fatal(err)
	}
	detail, failed := v.Failure()
	if !failed {
		t.Fatal("expected error variant")
	}
	if detail.UnresolvedMessage != nil {
		t.Errorf("expected no unresolved message, got %q", *detail.UnresolvedMessage)
	}
	if detail.MessageArgs == nil || len(detail.MessageArgs) != 0 {
		t.Errorf("expected empty message args, got %#v", detail.MessageArgs)
	}

	rec, _ := srv.LastRequest()
	if got := rec.Query.Get("folderPath"); got != "/content/dam/formsanddocuments/sample-of" {
		t.Errorf("unexpected folderPath %q", got)
	}
	if v, _ := rec.Field("filename"); v != "forms.zip" {
		t.Errorf("unexpected filename %q", v)
	}
}

func TestPreviewFile_Missing(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.PreviewFile(context.Background(), filepath.Join(t.TempDir(), "missing.zip"), "")
	assertCode(t, err, errors.ErrCodeInvalidInput)
	_, err = c.Preview(context.Background(), "", nil, "")
	assertCode(t, err, errors.ErrCodeInvalidInput)
	_, err = c.Preview(context.Background(), "forms.zip", nil, "../etc")
	assertCode(t, err, errors.ErrCodeInvalidInput)
	_, err = c.Upload(context.Background(), aemtest.PreviewFileID, "a/../../etc")
	assertCode(t, err, errors.ErrCodeInvalidInput)
}

func TestUpload(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadForms").Reply(aemtest.JSON(aemtest.UploadFormsSuccessJSON))

	v, err := c.Upload(context.Background(), aemtest.PreviewFileID, "sample-of")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := v.Success()
	if !ok || got.LastUploadedAssetPath != "/content/dam/formsanddocuments/sample-of/sample_form.xdp" {
		t.Errorf("unexpected variant %+v (ok=%v)", got, ok)
	}

	rec, _ := srv.LastRequest()
	want := map[string]string{
		"func":       "uploadForms",
		"folderPath": "/content/dam/formsanddocuments/sample-of",
		"fileId":     aemtest.PreviewFileID,
		"uploadType": "assets",
	}
	for k, v := range want {
		if got := rec.Query.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
	if diff := cmp.Diff([]string{"_charset_"}, rec.FieldNames()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Upload(context.Background(), "", "")
	assertCode(t, err, errors.ErrCodeInvalidInput)
}

func TestUploadFile(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadFormsPreview").Reply(aemtest.JSON(aemtest.PreviewSuccessJSON))
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadForms").Reply(aemtest.JSON(aemtest.UploadFormsSuccessJSON))

	v, err := c.UploadFile(context.Background(), writeFile(t, "sample.zip", "zip"), "")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsSuccess() {
		t.Fatal("expected success variant")
	}
	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].Query.Get("func") != "uploadFormsPreview" || reqs[1].Query.Get("func") != "uploadForms" {
		t.Errorf("unexpected call order %q, %q", reqs[0].RawQuery, reqs[1].RawQuery)
	}
	if got := reqs[1].Query.Get("fileId"); got != aemtest.PreviewFileID {
		t.Errorf("expected staged file id, got %q", got)
	}
}

func TestUploadFile_PreviewRejected(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadFormsPreview").Reply(aemtest.JSON(aemtest.PreviewFailureJSON))

	v, err := c.UploadFile(context.Background(), writeFile(t, "sample.zip", "zip"), "")
	if err != nil {
		t.Fatal(err)
	}
	detail, failed := v.Failure()
	if !failed || detail.Code != "ALC-FMG-001-001" {
		t.Errorf("expected preview error variant, got %+v", detail)
	}
	if n := len(srv.Requests()); n != 1 {
		t.Errorf("expected the upload to be skipped, got %d requests", n)
	}
}

func TestStrict(t *testing.T) {
	c, srv := newClient(t)
	strict := NewStrict(c)
	ctx := context.Background()

	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "deleteAssets").Reply(aemtest.JSON(aemtest.DeleteSuccessJSON))
	if err := strict.Delete(ctx, "sample-of"); err != nil {
		t.Errorf("Delete: %v", err)
	}

	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "deleteAssets").Reply(aemtest.JSON(aemtest.DeleteFailureJSON))
	err := strict.Delete(ctx, "sample-of")
	appErr := assertCode(t, err, errors.ErrCodeOperationFailed)
	want := "Error while performing deleteAssets (No node exists at path : /content/dam/formsanddocuments/sample-of)."
	if appErr.Message != want {
		t.Errorf("message = %q, want %q", appErr.Message, want)
	}

	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadFormsPreview").Reply(aemtest.JSON(aemtest.PreviewSuccessJSON))
	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadForms").Reply(aemtest.JSON(aemtest.UploadFormsFailureJSON))
	_, err = strict.UploadFile(ctx, writeFile(t, "sample.zip", "zip"), "")
	appErr = assertCode(t, err, errors.ErrCodeOperationFailed)
	if !strings.Contains(appErr.Message, "java.lang.NullPointerException") {
		t.Errorf("expected server description in %q", appErr.Message)
	}

	srv.On(http.MethodPost, aemtest.PathFormsManager).WithQuery("func", "uploadForms").Reply(aemtest.JSON(aemtest.UploadFormsSuccessJSON))
	got, err := strict.Upload(ctx, aemtest.PreviewFileID, "sample-of")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/content/dam/formsanddocuments/sample-of/sample_form.xdp" {
		t.Errorf("unexpected asset path %q", got)
	}

	preview, err := strict.PreviewFile(ctx, writeFile(t, "p.zip", "zip"), "")
	if err != nil {
		t.Fatal(err)
	}
	if preview.FileID != aemtest.PreviewFileID {
		t.Errorf("unexpected file id %q", preview.FileID)
	}
}

func TestErrors_NameTargetAndOperation(t *testing.T) {
	c, srv := newClient(t)
	srv.On(http.MethodPost, aemtest.PathFormsManager).Reply(aemtest.HTML(http.StatusInternalServerError, "boom"))

	_, err := c.Delete(context.Background(), "sample-of")
	appErr := assertCode(t, err, errors.ErrCodeProtocolViolation)
	for _, want := range []string{"Error while performing " + OpDelete, PathManage, "func=" + OpDelete, "statusCode='500'", "boom"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
	if appErr.Details["operation"] != OpDelete {
		t.Errorf("expected operation detail, got %v", appErr.Details)
	}
}

func TestSink(t *testing.T) {
	var msgs []string
	c, srv := newClient(t, WithSink(func(msg func() string) { msgs = append(msgs, msg()) }))
	srv.On(http.MethodPost, aemtest.PathFormsManager).Reply(aemtest.JSON(aemtest.DeleteFailureJSON))

	if _, err := c.Delete(context.Background(), "sample-of"); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"deleting /content/dam/formsanddocuments/sample-of",
		"deleteAssets: server error ALC-FMG-600-009: No node exists at path : /content/dam/formsanddocuments/sample-of",
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("sink messages mismatch (-want +got):\n%s", diff)
	}
}
