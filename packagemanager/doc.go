// Package packagemanager is a client for the AEM CRX package manager.
//
// It lists packages through /crx/packmgr/service.jsp and uploads, installs,
// uninstalls and deletes them through /crx/packmgr/service/.json:
//
//	adapter, _ := httpclient.New(cfg.ClientConfig())
//	pm := packagemanager.New(adapter)
//	list, err := pm.List(ctx)
//	v, err := pm.Upload(ctx, "build/my-package-1.0.zip")
//
// Command methods return a classify.Variant so callers see what the server
// reported. Strict returns plain errors instead:
//
//	strict := packagemanager.NewStrict(pm)
//	if err := strict.Install(ctx, "my_packages", "my-package-1.0.zip"); err != nil {
//	    return err
//	}
package packagemanager
