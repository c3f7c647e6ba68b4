// Package httpclient is the transport to one AEM server. It sends GET and
// multipart/form-data POST requests and normalizes every outcome:
//
//   - 204 No Content yields (nil, nil)
//   - a 2xx reply with a body of the expected content type yields a *Response
//   - anything else yields an *errors.AppError with code TRANSPORT_FAULT
//     (no response) or PROTOCOL_VIOLATION (unexpected response)
//
// # Basic Usage
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:4502",
//	    Auth:    httpclient.BasicAuth("admin", "admin"),
//	})
//
//	resp, err := adapter.Target("/crx/packmgr/service.jsp").
//	    BuildGet().
//	    QueryParam("cmd", "ls").
//	    Build().
//	    Send(ctx, httpclient.ContentTypeTextPlain)
//
// # Multipart
//
//	payload := adapter.Target("/crx/packmgr/service/.json").
//	    BuildMultipart().
//	    Add("cmd", "upload").
//	    AddFile("package", "/tmp/site.zip", httpclient.ContentTypeOctetStream).
//	    Build()
//	resp, err := payload.Send(ctx, httpclient.ContentTypeJSON)
//
// The payload streams its fields and closes every source it owns before
// Send returns.
package httpclient
