package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/execfoundry/runpipe/internal/executor"
	"github.com/execfoundry/runpipe/internal/progress"
)

type runOptions struct {
	timeout   time.Duration
	workDir   string
	env       []string
	patterns  []string
	noCapture bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run [flags] -- executable [args...]",
		Short: "Run a single command with capture, progress and a timeout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root.verbose)
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
			if opts.noCapture {
				capture := false
				execOpts.CaptureOutput = &capture
			}

			spec := executor.ProcessSpec{Path: args[0], Args: args[1:]}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			engine := executor.New(log)
			res, err := runWithProgress(spec.Path, patterns, log, func(sink progress.Sink) (executor.Result, error) {
				return engine.Execute(ctx, spec, execOpts, sink)
			})
			if err != nil {
				return err
			}

			return report(cmd, res)
		},
	}

	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 0, "Kill the command after this duration")
	cmd.Flags().StringVarP(&opts.workDir, "workdir", "w", "", "Working directory for the command")
	cmd.Flags().StringArrayVarP(&opts.env, "env", "e", nil, "Extra NAME=VALUE environment entries (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.patterns, "pattern", "p", nil, "Progress pattern presets: fraction, percent, ffmpeg-frame, common")
	cmd.Flags().BoolVar(&opts.noCapture, "no-capture", false, "Do not retain stdout/stderr text")

	return cmd
}
