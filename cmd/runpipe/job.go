package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/execfoundry/runpipe/internal/config"
	"github.com/execfoundry/runpipe/internal/executor"
	"github.com/execfoundry/runpipe/internal/progress"
)

func newJobCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job <file>",
		Short: "Run a YAML job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(root.verbose)
			if err != nil {
				return err
			}

			job, err := config.ParseJob(args[0])
			if err != nil {
				return err
			}

			execOpts, err := job.ExecutionOptions()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			engine := executor.New(log)
			res, err := runWithProgress(job.Name, execOpts.Patterns, log, func(sink progress.Sink) (executor.Result, error) {
				if dst, ok := job.PipeSpec(); ok {
					return engine.ExecutePipe(ctx, job.SourceSpec(), dst, execOpts, sink)
				}
				return engine.Execute(ctx, job.SourceSpec(), execOpts, sink)
			})
			if err != nil {
				return err
			}

			return report(cmd, res)
		},
	}

	return cmd
}
