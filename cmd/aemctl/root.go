package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/aemkit/bootstrap"
	"github.com/kbukum/aemkit/config"
	"github.com/kbukum/aemkit/version"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

// cli holds the persistent flags and the configuration they resolve to.
type cli struct {
	configFile   string
	envFile      string
	server       string
	port         int
	user         string
	password     string
	ssl          bool
	output       string
	logLevel     string
	otlpEndpoint string
	timeout      time.Duration

	cfg    config.App
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   config.ServiceName,
		Short: "Administer an AEM server",
		Long: "aemctl manages CRX packages and Forms & Documents assets on an AEM\n" +
			"server through its HTTP admin endpoints.",
		Version:           version.GetShortVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	f := root.PersistentFlags()
	f.StringVar(&c.configFile, "config", "", "config file (default: search ./config.yml and the user config dir)")
	f.StringVar(&c.envFile, "env-file", "", ".env file with AEM_* variables")
	f.StringVar(&c.server, "server", "", "AEM host name")
	f.IntVar(&c.port, "port", 0, "AEM port")
	f.StringVar(&c.user, "user", "", "AEM user")
	f.StringVar(&c.password, "password", "", "AEM password")
	f.BoolVar(&c.ssl, "ssl", false, "connect over https")
	f.StringVarP(&c.output, "output", "o", "", "output format: text or json")
	f.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error or disabled")
	f.StringVar(&c.otlpEndpoint, "otlp-endpoint", "", "OTLP HTTP collector host:port; empty disables telemetry")
	f.DurationVar(&c.timeout, "timeout", 0, "per-call timeout")

	root.AddCommand(newPackagesCmd(c))
	root.AddCommand(newFormsCmd(c))
	root.AddCommand(newVersionCmd(c))
	return root
}

// loadConfig resolves defaults, config file, environment and flags, in that
// order of increasing precedence.
func (c *cli) loadConfig(cmd *cobra.Command, _ []string) error {
	c.cfg = config.DefaultApp()
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}
	if err := config.Load(config.ServiceName, &c.cfg, opts...); err != nil {
		return err
	}

	flags := cmd.Flags()
	var server []config.Option
	if flags.Changed("server") {
		server = append(server, config.WithServerName(c.server))
	}
	if flags.Changed("port") {
		server = append(server, config.WithPort(c.port))
	}
	if flags.Changed("user") {
		server = append(server, config.WithUser(c.user))
	}
	if flags.Changed("password") {
		server = append(server, config.WithPassword(c.password))
	}
	if flags.Changed("ssl") {
		server = append(server, config.WithSSL(c.ssl))
	}
	if flags.Changed("timeout") {
		server = append(server, config.WithTimeout(c.timeout))
	}
	c.cfg.Server = c.cfg.Server.With(server...)

	if flags.Changed("output") {
		c.cfg.Output = c.output
	}
	if flags.Changed("log-level") {
		c.cfg.Log.Level = c.logLevel
	}
	if flags.Changed("otlp-endpoint") {
		c.cfg.Tracing.Endpoint = c.otlpEndpoint
	}
	c.cfg.ApplyDefaults()
	return nil
}

// withApp runs task inside a bootstrapped application connected to the
// configured server.
func (c *cli) withApp(cmd *cobra.Command, task func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := bootstrap.NewApp(&c.cfg,
		bootstrap.WithVersion(version.GetShortVersion()),
	)
	if err != nil {
		return err
	}
	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		return task(ctx, app)
	})
}

func (c *cli) printer() printer {
	return printer{format: c.cfg.Output, out: c.stdout}
}
