package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/hostproc/logger"
	"github.com/kbukum/hostproc/version"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hostproc",
		Short: "Run external programs through a process host",
		Long: `hostproc builds a process request, hands it to a process host and
relays the captured stdout, stderr and exit status.

Under a host runtime the module host is used; natively the local host
runs the program with os/exec. Configuration is read from hostproc.yml
and HOSTPROC_ environment variables.`,
		Version:       version.GetShortVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			w := cmd.ErrOrStderr()
			if a.cfg.Logging.Output == "stdout" {
				w = cmd.OutOrStdout()
			}
			a.log = logger.NewWithWriter(&a.cfg.Logging, a.cfg.Base.Name, w)
			logger.SetGlobalLogger(a.log)
			return a.initTelemetry(cmd.Context())
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: search for hostproc.yml)")
	flags.StringVar(&a.envFile, "env-file", "", ".env file read before HOSTPROC_ variables")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newRunCommand(a), newVersionCommand())
	return root
}
