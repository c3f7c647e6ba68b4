package classify

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/aemkit/aemtest"
	"github.com/kbukum/aemkit/document"
	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/observability"
)

type command struct {
	Success bool
	Msg     string
	Path    string
}

var commandOp = Operation[command]{
	Name:   "upload",
	Marker: "/success",
	Accept: []string{"true", "false"},
	Build: func(doc document.Document, marker string) (command, error) {
		ok, err := strconv.ParseBool(marker)
		if err != nil {
			return command{}, err
		}
		msg, _, err := doc.At("/msg")
		if err != nil {
			return command{}, err
		}
		path, _, err := doc.At("/path")
		if err != nil {
			return command{}, err
		}
		return command{Success: ok, Msg: msg, Path: path}, nil
	},
}

var fileIDOp = Operation[string]{
	Name:   "preview",
	Marker: "/fileId",
	Build:  func(_ document.Document, marker string) (string, error) { return marker, nil },
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) *errors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
	return appErr
}

func TestClassify_Success(t *testing.T) {
	body := []byte(`{"success":true,"msg":"Package uploaded","path":"/a/b.zip"}`)
	v, err := Classify(context.Background(), body, commandOp)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsSuccess() {
		t.Fatal("expected success variant")
	}
	got, ok := v.Success()
	if !ok {
		t.Fatal("Success() returned ok=false")
	}
	want := command{Success: true, Msg: "Package uploaded", Path: "/a/b.zip"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("success shape mismatch (-want +got):\n%s", diff)
	}
	if _, failed := v.Failure(); failed {
		t.Error("success variant must not carry a failure")
	}
}

func TestClassify_SuccessFalse(t *testing.T) {
	v, err := Classify(context.Background(), []byte(`{"success":false,"msg":"no package"}`), commandOp)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := v.Success()
	if !ok || got.Success || got.Msg != "no package" {
		t.Errorf("unexpected variant %+v (ok=%v)", got, ok)
	}
}

func TestClassify_ErrorShape(t *testing.T) {
	body := []byte(`{"code":"C1","type":"error","title":"T","description":"D","rootCause":"R"}`)
	v, err := Classify(context.Background(), body, fileIDOp)
	if err != nil {
		t.Fatal(err)
	}
	if v.IsSuccess() {
		t.Fatal("expected error variant")
	}
	got, ok := v.Failure()
	if !ok {
		t.Fatal("Failure() returned ok=false")
	}
	want := ErrorDetail{
		Code:        "C1",
		Type:        "error",
		Title:       "T",
		Description: "D",
		MessageArgs: []string{},
		RootCause:   "R",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("error detail mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_ErrorShapeFixture(t *testing.T) {
	v, err := Classify(context.Background(), aemtest.DeleteFailureJSON, fileIDOp)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := v.Failure()
	if !ok {
		t.Fatal("expected error variant")
	}
	if got.Code != "ALC-FMG-600-009" {
		t.Errorf("unexpected code %q", got.Code)
	}
	if got.UnresolvedMessage == nil || *got.UnresolvedMessage != "No node exists at path : {0}" {
		t.Errorf("unexpected unresolved message %v", got.UnresolvedMessage)
	}
	if diff := cmp.Diff([]string{"/content/dam/formsanddocuments/sample-of"}, got.MessageArgs); diff != "" {
		t.Errorf("message args mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_MarkerWinsOverErrorShape(t *testing.T) {
	body := []byte(`{"fileId":"42","code":"C","type":"t","title":"t","description":"d","rootCause":"r"}`)
	v, err := Classify(context.Background(), body, fileIDOp)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := v.Success(); !ok || got != "42" {
		t.Errorf("expected success 42, got %q (ok=%v)", got, ok)
	}
}

func TestClassify_FailClosed(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{"empty object", `{}`, errors.ErrCodeUnexpectedResponseShape},
		{"partial error shape", `{"code":"C","type":"t","title":"t","description":"d"}`, errors.ErrCodeUnexpectedResponseShape},
		{"unrelated fields", `{"status":"ok"}`, errors.ErrCodeUnexpectedResponseShape},
		{"malformed", `{"success":`, errors.ErrCodeUnexpectedResponseShape},
		{"html", `<html><body>Login</body>`, errors.ErrCodeUnexpectedResponseShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(context.Background(), []byte(tt.body), commandOp)
			appErr := assertCode(t, err, tt.code)
			if appErr.Details["operation"] != "upload" {
				t.Errorf("expected operation detail, got %v", appErr.Details)
			}
		})
	}
}

func TestClassify_UnexpectedBodyInMessage(t *testing.T) {
	_, err := Classify(context.Background(), []byte(`{"status":"ok"}`), commandOp)
	appErr := assertCode(t, err, errors.ErrCodeUnexpectedResponseShape)
	if want := `{"status":"ok"}`; !strings.Contains(appErr.Message, want) {
		t.Errorf("expected body %q in message %q", want, appErr.Message)
	}
}

func TestClassify_MarkerNotAccepted(t *testing.T) {
	op := Operation[string]{
		Name:   "delete",
		Marker: "/requestStatus",
		Accept: []string{"success"},
		Build:  func(_ document.Document, marker string) (string, error) { return marker, nil },
	}
	_, err := Classify(context.Background(), []byte(`{"requestStatus":"pending"}`), op)
	appErr := assertCode(t, err, errors.ErrCodeUnexpectedMarkerValue)
	if appErr.Details["value"] != "pending" {
		t.Errorf("expected value detail, got %v", appErr.Details)
	}
	if !strings.Contains(appErr.Message, "pending") {
		t.Errorf("expected value in message %q", appErr.Message)
	}

	v, err := Classify(context.Background(), aemtest.DeleteSuccessJSON, op)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Success(); got != "success" {
		t.Errorf("expected success marker, got %q", got)
	}
}

func TestClassify_MultipleRootNodes(t *testing.T) {
	doc, err := document.Parse([]byte(`{"a":1,"b":2}`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = doc.SingleRootName()
	assertCode(t, err, errors.ErrCodeMultipleRootNodes)
}

func TestClassify_XMLBody(t *testing.T) {
	op := Operation[string]{
		Name:   "list",
		Marker: "/crx/response/status/@code",
		Build: func(doc document.Document, marker string) (string, error) {
			text, _, err := doc.At("/crx/response/status")
			return marker + " " + text, err
		},
	}
	v, err := ClassifyWith(context.Background(), aemtest.ListXML, op, Options{ContentType: "text/plain"})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Success(); got != "200 ok" {
		t.Errorf("expected %q, got %q", "200 ok", got)
	}
}

func TestVariant_Unwrap(t *testing.T) {
	v := Failed[string](ErrorDetail{Code: "C", Description: "Unexpected record signature"})
	_, err := v.Unwrap("uploadFormsPreview")
	appErr := assertCode(t, err, errors.ErrCodeOperationFailed)
	want := "Error while performing uploadFormsPreview (Unexpected record signature)."
	if appErr.Message != want {
		t.Errorf("expected message %q, got %q", want, appErr.Message)
	}
	if appErr.Details["code"] != "C" {
		t.Errorf("expected server code in details, got %v", appErr.Details)
	}

	got, err := Succeeded("ok").Unwrap("x")
	if err != nil || got != "ok" {
		t.Errorf("Unwrap(success) = %q, %v", got, err)
	}
}

func TestVariant_Map(t *testing.T) {
	n := Map(Succeeded("abc"), func(s string) int { return len(s) })
	if got, ok := n.Success(); !ok || got != 3 {
		t.Errorf("Map(success) = %d, %v", got, ok)
	}
	failed := Map(Failed[string](ErrorDetail{Code: "C"}), func(s string) int { return len(s) })
	detail, ok := failed.Failure()
	if !ok || detail.Code != "C" {
		t.Errorf("Map(failure) = %+v, %v", detail, ok)
	}
	if detail.MessageArgs == nil {
		t.Error("message args must not be nil")
	}
}

func TestErrorDetail_String(t *testing.T) {
	tests := []struct {
		detail ErrorDetail
		want   string
	}{
		{ErrorDetail{Code: "C", Description: "D"}, "C: D"},
		{ErrorDetail{Code: "C"}, "C"},
		{ErrorDetail{Description: "D"}, "D"},
	}
	for _, tt := range tests {
		if got := tt.detail.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestClassifyResponse(t *testing.T) {
	srv := aemtest.Start(t)
	srv.On(http.MethodPost, "/ok").Reply(aemtest.JSON(aemtest.UploadSuccessJSON))
	srv.On(http.MethodPost, "/empty").Reply(aemtest.NoContent())
	adapter, err := httpclient.New(srv.ClientConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	resp, err := adapter.Target("/ok").BuildMultipart().Build().Send(ctx, httpclient.ContentTypeJSON)
	if err != nil {
		t.Fatal(err)
	}
	v, err := ClassifyResponse(ctx, resp, commandOp, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := v.Success(); !ok || !got.Success || got.Msg != "Package uploaded" {
		t.Errorf("unexpected variant %+v (ok=%v)", got, ok)
	}

	resp, err = adapter.Target("/empty").BuildMultipart().Build().Send(ctx, httpclient.ContentTypeJSON)
	if err != nil || resp != nil {
		t.Fatalf("expected (nil, nil) for 204, got (%v, %v)", resp, err)
	}
	_, err = ClassifyResponse(ctx, resp, commandOp, Options{})
	appErr := assertCode(t, err, errors.ErrCodeUnexpectedResponseShape)
	if appErr.Details["operation"] != "upload" {
		t.Errorf("expected operation detail, got %v", appErr.Details)
	}
}

func TestClassify_Observability(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	opts := Options{Metrics: metrics}
	if _, err := ClassifyWith(ctx, aemtest.PreviewSuccessJSON, fileIDOp, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := ClassifyWith(ctx, aemtest.PreviewFailureJSON, fileIDOp, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := ClassifyWith(ctx, []byte(`{}`), fileIDOp, opts); err == nil {
		t.Fatal("expected error for empty object")
	}
	if _, err := ClassifyResponse(ctx, nil, fileIDOp, opts); err == nil {
		t.Fatal("expected error for a missing response")
	}

	spans := recorder.Ended()
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans, got %d", len(spans))
	}
	var outcomes []string
	for _, s := range spans {
		if s.Name() != observability.SpanClassify {
			t.Errorf("unexpected span name %q", s.Name())
		}
		for _, kv := range s.Attributes() {
			if string(kv.Key) == observability.AttrOutcome {
				outcomes = append(outcomes, kv.Value.AsString())
			}
		}
	}
	want := []string{observability.ClassifiedSuccess, observability.ClassifiedFailure, observability.ClassifiedUnexpected, observability.ClassifiedUnexpected}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Errorf("span outcomes mismatch (-want +got):\n%s", diff)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "aem.client.classifications" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 4 {
		t.Errorf("expected 4 classifications recorded, got %d", total)
	}
}
