package executor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/execfoundry/runpipe/internal/progress"
	runpipeerrors "github.com/execfoundry/runpipe/pkg/errors"
)

type outcome struct {
	exitCode  int
	timedOut  bool
	cancelled bool
}

// ExecutePipe runs src and dst as a shell-style pipeline: src's stdout is
// spliced into dst's stdin by a dedicated copy goroutine, which closes dst's
// stdin exactly once when src's stdout reaches end-of-stream.
//
// Progress patterns are applied to src's stderr, where piping tools report
// progress; dst's stderr carries diagnostics only. Each process races its own
// timeout off the shared budget and the shared cancellation signal.
//
// The Result reflects dst: its exit code, its captured stdout, its kill
// flags. A src-side failure is visible only through the captured stderr text
// (src's capture precedes dst's in Result.Stderr), never through the exit
// code. That asymmetry is inherent to one-way piping.
func (e *Engine) ExecutePipe(ctx context.Context, src, dst ProcessSpec, opts *Options, sink progress.Sink) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := normalized(opts)
	started := time.Now()

	srcCmd := newCommand(src, o)
	srcOut, err := srcCmd.StdoutPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(src.Path, err)
	}
	srcErr, err := srcCmd.StderrPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(src.Path, err)
	}

	dstCmd := newCommand(dst, o)
	dstIn, err := dstCmd.StdinPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(dst.Path, err)
	}
	dstOut, err := dstCmd.StdoutPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(dst.Path, err)
	}
	dstErr, err := dstCmd.StderrPipe()
	if err != nil {
		return Result{}, runpipeerrors.NewStartError(dst.Path, err)
	}

	if err := srcCmd.Start(); err != nil {
		_ = dstIn.Close()
		_ = dstOut.Close()
		_ = dstErr.Close()
		return Result{}, runpipeerrors.NewStartError(src.Path, err)
	}
	if err := dstCmd.Start(); err != nil {
		kill(srcCmd)
		_ = srcCmd.Wait()
		return Result{}, runpipeerrors.NewStartError(dst.Path, err)
	}
	e.log.WithFields(map[string]any{
		"source":      src.Path,
		"destination": dst.Path,
		"source_pid":  srcCmd.Process.Pid,
		"dest_pid":    dstCmd.Process.Pid,
	}).Debug("pipeline started")

	capture := o.CaptureEnabled()
	srcErrDrain := newDrain(capture, o.Patterns, sink, started)
	dstOutDrain := newDrain(capture, nil, nil, started)
	dstErrDrain := newDrain(capture, nil, nil, started)

	// Sole reader of src's stdout and sole writer of dst's stdin; nothing
	// else touches either handle while the copy runs.
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = io.Copy(dstIn, srcOut)
		_ = dstIn.Close()
		_ = srcOut.Close()
	}()

	var srcDrains sync.WaitGroup
	srcDrains.Add(1)
	go func() {
		defer srcDrains.Done()
		srcErrDrain.consume(srcErr)
	}()

	var dstDrains sync.WaitGroup
	dstDrains.Add(2)
	go func() {
		defer dstDrains.Done()
		dstOutDrain.consume(dstOut)
	}()
	go func() {
		defer dstDrains.Done()
		dstErrDrain.consume(dstErr)
	}()

	srcDone := make(chan error, 1)
	go func() {
		srcDrains.Wait()
		<-copied
		srcDone <- srcCmd.Wait()
	}()

	dstDone := make(chan error, 1)
	go func() {
		dstDrains.Wait()
		dstDone <- dstCmd.Wait()
	}()

	srcCh := make(chan outcome, 1)
	go func() {
		code, timedOut, cancelled := e.awaitExit(ctx, src.Path, srcCmd, srcDone, o.Timeout)
		srcCh <- outcome{exitCode: code, timedOut: timedOut, cancelled: cancelled}
	}()

	dstCode, dstTimedOut, dstCancelled := e.awaitExit(ctx, dst.Path, dstCmd, dstDone, o.Timeout)
	srcOutcome := <-srcCh
	duration := time.Since(started)

	e.log.WithFields(map[string]any{
		"source":           src.Path,
		"destination":      dst.Path,
		"source_exit_code": srcOutcome.exitCode,
		"dest_exit_code":   dstCode,
		"duration":         duration.String(),
	}).Debug("pipeline finished")

	stderr := srcErrDrain.text() + dstErrDrain.text()
	return newResult(dstCode, dstOutDrain.text(), stderr, duration, dstTimedOut, dstCancelled), nil
}
