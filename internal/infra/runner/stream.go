// Where: cli/internal/infra/runner/stream.go
// What: Streamed command execution with per-line rewriting.
// Why: Builders emit long progress logs; drain both pipes concurrently so neither blocks.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LineRewriter transforms a single output line before it is displayed.
type LineRewriter func(line string) string

// StreamOptions controls RunStream behavior.
type StreamOptions struct {
	// Rewrite is applied to displayed lines only; captured text stays verbatim.
	Rewrite LineRewriter
	// Capture keeps a copy of stdout and stderr in the result.
	Capture bool
}

// StreamResult holds captured output when StreamOptions.Capture is set.
type StreamResult struct {
	Stdout string
	Stderr string
}

// Combined returns stdout followed by stderr.
func (r StreamResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// StreamRunner executes a command while relaying its output line by line.
type StreamRunner interface {
	RunStream(ctx context.Context, dir string, opts StreamOptions, name string, args ...string) (StreamResult, error)
}

func (r ExecRunner) RunStream(
	ctx context.Context,
	dir string,
	opts StreamOptions,
	name string,
	args ...string,
) (StreamResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return StreamResult{}, fmt.Errorf("stdout pipe %s: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return StreamResult{}, fmt.Errorf("stderr pipe %s: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return StreamResult{}, fmt.Errorf("run %s: %w", name, err)
	}

	var outBuf, errBuf bytes.Buffer
	var group errgroup.Group
	group.Go(func() error {
		return relayLines(stdout, r.stdout(), captureInto(&outBuf, opts.Capture), opts.Rewrite)
	})
	group.Go(func() error {
		return relayLines(stderr, r.stderr(), captureInto(&errBuf, opts.Capture), opts.Rewrite)
	})
	// Readers must finish before Wait closes the pipes.
	relayErr := group.Wait()
	waitErr := cmd.Wait()

	result := StreamResult{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if waitErr != nil {
		return result, fmt.Errorf("run %s: %w", name, waitErr)
	}
	if relayErr != nil {
		return result, fmt.Errorf("relay %s output: %w", name, relayErr)
	}
	return result, nil
}

func captureInto(buf *bytes.Buffer, enabled bool) io.Writer {
	if !enabled {
		return nil
	}
	return buf
}

// relayLines copies src to display line by line. A display write error is
// remembered and returned at EOF; src is drained either way so the child never
// blocks on a full pipe.
func relayLines(src io.Reader, display io.Writer, capture io.Writer, rewrite LineRewriter) error {
	reader := bufio.NewReader(src)
	var displayErr error
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if capture != nil {
				_, _ = io.WriteString(capture, line)
			}
			shown := line
			if rewrite != nil {
				shown = rewrite(line)
			}
			if _, werr := io.WriteString(display, shown); werr != nil && displayErr == nil {
				displayErr = werr
				display = io.Discard
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return displayErr
			}
			return err
		}
	}
}

// ReplaceHost returns a rewriter that swaps every occurrence of from with to.
func ReplaceHost(from, to string) LineRewriter {
	if from == "" {
		return nil
	}
	return func(line string) string {
		return strings.ReplaceAll(line, from, to)
	}
}
