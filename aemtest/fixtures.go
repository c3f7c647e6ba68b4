package aemtest

import _ "embed"

// Endpoint paths of the fake server.
const (
	PathPackageService = "/crx/packmgr/service.jsp"
	PathPackageJSON    = "/crx/packmgr/service/.json"
	PathFormsManager   = "/libs/fd/fm/content/manage.json"
)

// Recorded AEM response bodies.
var (
	//go:embed testdata/list.xml
	ListXML []byte
	//go:embed testdata/list_failure.xml
	ListFailureXML []byte
	//go:embed testdata/upload_success.json
	UploadSuccessJSON []byte
	//go:embed testdata/delete_success.json
	DeleteSuccessJSON []byte
	//go:embed testdata/delete_failure.json
	DeleteFailureJSON []byte
	//go:embed testdata/preview_success.json
	PreviewSuccessJSON []byte
	//go:embed testdata/preview_failure.json
	PreviewFailureJSON []byte
	//go:embed testdata/upload_forms_success.json
	UploadFormsSuccessJSON []byte
	//go:embed testdata/upload_forms_failure.json
	UploadFormsFailureJSON []byte
)

// ListPackageCount is the number of packages in ListXML.
const ListPackageCount = 3

// PreviewFileID is the fileId in PreviewSuccessJSON.
const PreviewFileID = "30226661338789"
