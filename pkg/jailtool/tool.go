// Package jailtool runs the Jailhouse administration binary and captures its
// output. The binary is the only control interface the hypervisor has, so
// every driver operation funnels through here.
package jailtool

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	defs "cellrun/definitions"
	er "cellrun/errors"
	log "cellrun/logger"
)

// Runner abstracts the tool invocation so the driver can be tested without a
// real binary.
type Runner interface {
	// Run executes the tool with the given argument vector and returns its
	// stdout. A non-zero exit status is an error; stderr is discarded.
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// Tool invokes a fixed binary. The zero value is not usable; construct with
// New. The binary path never changes for the life of the value.
type Tool struct {
	binary string
}

func New(binary string) *Tool {
	if binary == "" {
		binary = defs.DefaultBinary
	}
	return &Tool{binary: binary}
}

func (t *Tool) Binary() string {
	return t.binary
}

// Run executes the binary to completion with a scrubbed environment and
// collects stdout. No timeout is imposed here, the tool talks to a local
// kernel device and returns near-instantly; callers can bound latency
// through ctx.
func (t *Tool) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, span := otel.Tracer("cellrun/jailtool").Start(ctx, "jailtool.run")
	span.SetAttributes(
		attribute.String("tool.binary", t.binary),
		attribute.StringSlice("tool.args", args),
	)
	defer span.End()

	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Env = scrubbedEnv()

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	log.Debugf("running %s", cmd.String())
	if err := cmd.Run(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, classifyRunError(t.binary, err)
	}

	return stdout.Bytes(), nil
}

// Probe runs `--version` once and requires the identifying banner at the
// start of stdout. It is the connect-time sanity check that pins the binary
// path for the connection's life.
func (t *Tool) Probe(ctx context.Context) error {
	out, err := t.Run(ctx, "--version")
	if err != nil {
		return errors.Wrapf(er.ToolUnavailable, "probing %s: %v", t.binary, err)
	}
	if !bytes.HasPrefix(out, []byte(defs.VersionBanner)) {
		return errors.Wrapf(er.ToolUnavailable,
			"%s does not look like a Jailhouse management tool", t.binary)
	}
	return nil
}

func classifyRunError(binary string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.Wrapf(er.ToolFailed, "%s exited with status %d", binary, exitErr.ExitCode())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Wrapf(er.ToolUnavailable, "%s: %v", binary, execErr.Err)
	}
	return errors.Wrapf(er.ToolIOFailed, "%s: %v", binary, err)
}

// The tool inherits only a deterministic locale and the caller's PATH.
func scrubbedEnv() []string {
	env := []string{"LC_ALL=C"}
	if path, ok := os.LookupEnv("PATH"); ok {
		env = append(env, "PATH="+path)
	}
	return env
}
