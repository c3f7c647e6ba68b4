// aemctl administers an AEM server from the command line.
//
// Usage:
//
//	aemctl packages ls
//	aemctl packages upload [--install] <file>...
//	aemctl packages install|uninstall|delete <group> <file>
//	aemctl forms delete <target>
//	aemctl forms upload [--folder=<folder>] <file>
//	aemctl version
//
// The server comes from config.yml, AEM_* environment variables or flags.
package main

import (
	"context"
	"io"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes aemctl with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		format := c.cfg.Output
		if format == "" {
			format = c.output
		}
		printError(stderr, format, err)
		return 1
	}
	return 0
}
