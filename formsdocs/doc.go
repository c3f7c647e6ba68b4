// Package formsdocs manages assets in AEM Forms & Documents through
// /libs/fd/fm/content/manage.json.
//
// Uploading is two calls: a preview stages the file and returns a file id,
// then an upload commits the staged file. UploadFile does both:
//
//	fd := formsdocs.New(adapter)
//	v, err := fd.UploadFile(ctx, "build/sample-of.zip", "")
//	if err != nil {
//	    return err
//	}
//	if detail, failed := v.Failure(); failed {
//	    log.Printf("upload rejected: %s", detail)
//	}
//
// Strict reports rejected calls as OPERATION_FAILED errors instead.
package formsdocs
