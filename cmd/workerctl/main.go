package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/workerctl/internal/config"
	"github.com/danmuck/workerctl/internal/logging"
	"github.com/danmuck/workerctl/internal/script"
	"github.com/danmuck/workerctl/internal/service"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath      string
	runtimePath     string
	launchPath      string
	scriptPath      string
	format          string
	settle          time.Duration
	match           string
	metricsTextfile string
}

func main() {
	logging.ConfigureRuntime()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "workerctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "workerctl",
		Short:         "Launch network workers from runtime and launch definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLaunch(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", defaultConfigPath, "workerctl settings file (TOML)")
	pf.StringVar(&flags.runtimePath, "runtime", "", "runtime definitions file")
	pf.StringVar(&flags.launchPath, "launch", "", "launch definitions file")
	pf.StringVar(&flags.scriptPath, "script", "", "generated launch script path (default run_mcp_all_silent.vbs or .sh by format)")
	pf.StringVar(&flags.format, "format", "", "script format: auto|vbscript|sh")
	pf.DurationVar(&flags.settle, "settle", 0, "wait before reading the process table")
	pf.StringVar(&flags.match, "match", "", "process name substring identifying workers")
	pf.StringVar(&flags.metricsTextfile, "metrics-textfile", "", "write run metrics to this textfile")

	root.AddCommand(
		&cobra.Command{
			Use:   "launch",
			Short: "Write the launch script, run it, and report worker processes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runLaunch(cmd, flags)
			},
		},
		&cobra.Command{
			Use:   "plan",
			Short: "Show the synthesized command for every worker without launching",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd, flags)
				if err != nil {
					return err
				}
				plan, err := svc.Plan()
				if err != nil {
					return err
				}
				service.PrintPlan(cmd.OutOrStdout(), plan)
				return nil
			},
		},
		&cobra.Command{
			Use:   "script",
			Short: "Print the launch script to stdout without writing or running it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(cmd, flags)
				if err != nil {
					return err
				}
				plan, err := svc.Plan()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), svc.Render(plan))
				return nil
			},
		},
		newInitCmd(),
	)
	return root
}

func newInitCmd() *cobra.Command {
	var force bool
	var kind string
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a settings or definitions template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := defaultConfigPath
			if len(args) == 1 {
				target = args[0]
			}
			if err := config.WriteTemplate(target, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s template to %s\n", kind, target)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&kind, "kind", "launcher", "template kind: launcher|runtime|launch")
	return cmd
}

func runLaunch(cmd *cobra.Command, flags *rootFlags) error {
	svc, err := newService(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	result.Print(cmd.OutOrStdout())
	return nil
}

func newService(cmd *cobra.Command, flags *rootFlags) (*service.Service, error) {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	return service.New(cfg)
}

// resolveConfig layers defaults, the settings file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, flags *rootFlags) (service.Config, error) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	cfg, err := loadServiceConfig(flags.configPath, changed("config"))
	if err != nil {
		return service.Config{}, err
	}
	if changed("runtime") {
		cfg.RuntimeConfigPath = flags.runtimePath
	}
	if changed("launch") {
		cfg.LaunchConfigPath = flags.launchPath
	}
	if changed("script") {
		cfg.ScriptPath = flags.scriptPath
	}
	if changed("format") {
		cfg.ScriptFormat = script.Format(flags.format)
	}
	if changed("settle") {
		cfg.Settle = flags.settle
	}
	if changed("match") {
		cfg.ProcessMatch = flags.match
	}
	if changed("metrics-textfile") {
		cfg.MetricsTextfile = flags.metricsTextfile
	}
	return cfg, nil
}
