package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/aemkit/bootstrap"
	"github.com/kbukum/aemkit/errors"
	"github.com/kbukum/aemkit/packagemanager"
)

const defaultUploadConcurrency = 4

func newPackagesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "packages",
		Aliases: []string{"pkg"},
		Short:   "Manage CRX packages",
	}
	cmd.AddCommand(newPackagesListCmd(c))
	cmd.AddCommand(newPackagesUploadCmd(c))
	for _, command := range []string{packagemanager.CommandInstall, packagemanager.CommandUninstall, packagemanager.CommandDelete} {
		cmd.AddCommand(newPackageCommandCmd(c, command))
	}
	return cmd
}

func newPackagesListCmd(c *cli) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List installed packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				packages, err := packagemanager.NewStrict(app.PackageManager()).List(ctx)
				if err != nil {
					return err
				}
				if group != "" {
					packages = filterGroup(packages, group)
				}
				return printPackages(c.printer(), packages)
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "only list packages of this group")
	return cmd
}

func filterGroup(packages []packagemanager.Package, group string) []packagemanager.Package {
	out := make([]packagemanager.Package, 0, len(packages))
	for _, p := range packages {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

func printPackages(p printer, packages []packagemanager.Package) error {
	if p.isJSON() {
		return p.json(packages)
	}
	rows := make([][]string, 0, len(packages))
	for _, pkg := range packages {
		rows = append(rows, []string{pkg.Group, pkg.Name, pkg.Version, pkg.Size, orDash(pkg.LastUnpacked)})
	}
	return p.table([]string{"GROUP", "NAME", "VERSION", "SIZE", "LAST UNPACKED"}, rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// uploadResult is the outcome of one uploaded file.
type uploadResult struct {
	File      string `json:"file"`
	Path      string `json:"path"`
	Installed bool   `json:"installed"`
}

func newPackagesUploadCmd(c *cli) *cobra.Command {
	var (
		install     bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload package files, replacing packages of the same name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				results, err := uploadPackages(ctx, packagemanager.NewStrict(app.PackageManager()), files, install, concurrency)
				if err != nil {
					return err
				}
				p := c.printer()
				if p.isJSON() {
					return p.json(results)
				}
				for _, r := range results {
					verb := "uploaded"
					if r.Installed {
						verb = "installed"
					}
					if _, err := fmt.Fprintf(p.out, "%s %s -> %s\n", verb, r.File, r.Path); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, "install each package after uploading it")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultUploadConcurrency, "number of parallel uploads")
	return cmd
}

// uploadPackages uploads files in parallel and returns results in argument
// order. The first failure cancels the remaining uploads.
func uploadPackages(ctx context.Context, pm *packagemanager.Strict, files []string, install bool, concurrency int) ([]uploadResult, error) {
	if concurrency < 1 {
		return nil, errors.InvalidInput("concurrency", "must be at least 1")
	}
	results := make([]uploadResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			uploaded, err := pm.Upload(ctx, file)
			if err != nil {
				return err
			}
			results[i] = uploadResult{File: file, Path: uploaded}
			if !install {
				return nil
			}
			group, name, err := splitPackagePath(uploaded)
			if err != nil {
				return err
			}
			if err := pm.Install(ctx, group, name); err != nil {
				return err
			}
			results[i].Installed = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// splitPackagePath splits /etc/packages/<group>/<file> as returned by an
// upload into group and file.
func splitPackagePath(p string) (group, file string, err error) {
	const prefix = "/etc/packages/"
	rest, ok := strings.CutPrefix(p, prefix)
	dir, file := path.Split(rest)
	group = strings.Trim(dir, "/")
	if !ok || group == "" || file == "" {
		return "", "", errors.InvalidInput("path", fmt.Sprintf("unexpected package path %q", p))
	}
	return group, file, nil
}

func newPackageCommandCmd(c *cli, command string) *cobra.Command {
	return &cobra.Command{
		Use:   command + " <group> <file>",
		Short: strings.ToUpper(command[:1]) + command[1:] + " a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, file := args[0], args[1]
			return c.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				resp, err := packagemanager.NewStrict(app.PackageManager()).Execute(ctx, command, group, file)
				if err != nil {
					return err
				}
				return c.printer().result(resp, resp.Msg)
			})
		},
	}
}
