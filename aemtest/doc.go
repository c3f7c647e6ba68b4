// Package aemtest provides a fake AEM server for tests. It is a gin engine
// behind httptest that authenticates like AEM, records every request
// (including multipart fields in wire order) and answers with stubbed
// replies.
//
//	srv := aemtest.Start(t)
//	srv.On(http.MethodGet, aemtest.PathPackageService).
//	    WithQuery("cmd", "ls").
//	    Reply(aemtest.TextPlain(aemtest.ListXML))
//
// Unmatched requests get a 404 with an HTML body, as AEM does.
package aemtest
