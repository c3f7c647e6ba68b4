package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/aemkit/bootstrap"
	"github.com/kbukum/aemkit/formsdocs"
)

func newFormsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage Forms & Documents assets",
	}
	cmd.AddCommand(newFormsDeleteCmd(c))
	cmd.AddCommand(newFormsUploadCmd(c))
	return cmd
}

func newFormsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <target>",
		Short: "Delete an asset or folder below " + formsdocs.AssetRoot,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			return c.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := formsdocs.NewStrict(app.FormsDocs()).Delete(ctx, target); err != nil {
					return err
				}
				return c.printer().result(
					map[string]string{"deleted": target},
					fmt.Sprintf("deleted %s", target),
				)
			})
		},
	}
}

func newFormsUploadCmd(c *cli) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a forms archive into a Forms & Documents folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			return c.withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				assetPath, err := formsdocs.NewStrict(app.FormsDocs()).UploadFile(ctx, file, folder)
				if err != nil {
					return err
				}
				return c.printer().result(
					formsdocs.UploadResponse{LastUploadedAssetPath: assetPath},
					fmt.Sprintf("uploaded %s -> %s", file, assetPath),
				)
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "target folder below "+formsdocs.AssetRoot)
	return cmd
}
