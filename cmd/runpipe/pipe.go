package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/execfoundry/runpipe/internal/executor"
	"github.com/execfoundry/runpipe/internal/progress"
)

type pipeOptions struct {
	timeout  time.Duration
	workDir  string
	env      []string
	patterns []string
}

func newPipeCmd(root *rootFlags) *cobra.Command {
	opts := pipeOptions{}

	cmd := &cobra.Command{
		Use:   `pipe [flags] "source command" "destination command"`,
		Short: "Pipe one command's stdout into another's stdin, shell style",
		Long: `Pipe starts both commands, splices the source's stdout into the
destination's stdin, and reports the destination's result. Commands are split
on whitespace; use a job file for arguments that contain spaces.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root.verbose)
			if err != nil {
				return err
			}

			src, err := splitCommand(args[0])
			if err != nil {
				return err
			}
			dst, err := splitCommand(args[1])
			if err != nil {
				return err
			}

			env, err := parseEnv(opts.env)
			if err != nil {
				return err
			}
			patterns, err := resolvePresets(opts.patterns)
			if err != nil {
				return err
			}

			execOpts := executor.DefaultOptions()
			execOpts.Timeout = opts.timeout
			execOpts.WorkDir = opts.workDir
			execOpts.Env = env
			execOpts.Patterns = patterns

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			engine := executor.New(log)
			title := src.Path + " | " + dst.Path
			res, err := runWithProgress(title, patterns, log, func(sink progress.Sink) (executor.Result, error) {
				return engine.ExecutePipe(ctx, src, dst, execOpts, sink)
			})
			if err != nil {
				return err
			}

			return report(cmd, res)
		},
	}

	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 0, "Per-process wall-clock budget")
	cmd.Flags().StringVarP(&opts.workDir, "workdir", "w", "", "Working directory for both commands")
	cmd.Flags().StringArrayVarP(&opts.env, "env", "e", nil, "Extra NAME=VALUE environment entries (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.patterns, "pattern", "p", nil, "Progress pattern presets applied to the source's stderr")

	return cmd
}
