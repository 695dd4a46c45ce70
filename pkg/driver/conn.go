// Package driver exposes Jailhouse cells as domains in the manner of a
// hypervisor management driver: open a connection, enumerate and look up
// domains, query their state, drive their lifecycle.
package driver

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	defs "cellrun/definitions"
	er "cellrun/errors"
	log "cellrun/logger"
	"cellrun/pkg/cell"
	"cellrun/pkg/jailtool"
	"cellrun/pkg/utils"
)

// Connection is one open handle on the hypervisor. It owns the tool binary
// path and the most recent cell snapshot. Connections are independent of
// each other; a single connection must be serialized by the caller.
type Connection struct {
	tool   jailtool.Runner
	binary string
	cells  []cell.Cell
	closed bool
}

// Open parses a jailhouse:// URI, resolves the tool binary and verifies it
// with a version probe. The URI path, when present, names the binary;
// otherwise "jailhouse" is resolved on PATH. The binary path is fixed for
// the life of the connection.
func Open(ctx context.Context, rawURI string) (*Connection, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, errors.Wrapf(er.InvalidURI, "%q: %v", rawURI, err)
	}
	if u.Scheme != defs.URIScheme {
		return nil, errors.Wrapf(er.InvalidURI, "unsupported scheme %q", u.Scheme)
	}

	binary := u.Path
	if binary == "" || binary == "/" {
		binary = defs.DefaultBinary
	} else if !utils.FileIsExecutable(binary) {
		return nil, errors.Wrapf(er.ToolUnavailable, "%q is not an executable file", binary)
	}

	tool := jailtool.New(binary)
	if err := tool.Probe(ctx); err != nil {
		return nil, err
	}

	log.WithField("binary", binary).Debug("jailhouse connection opened")
	return &Connection{tool: tool, binary: binary}, nil
}

// Close drops the snapshot and invalidates the handle.
func (c *Connection) Close() error {
	c.cells = nil
	c.closed = true
	return nil
}

// IsAlive reports whether the connection can still be used. There is no
// session to lose, so an open connection is always alive.
func (c *Connection) IsAlive() bool {
	return !c.closed
}

// Binary returns the administration binary this connection drives.
func (c *Connection) Binary() string {
	return c.binary
}

func (c *Connection) guard() error {
	if c.closed {
		return errors.WithStack(er.ConnClosed)
	}
	return nil
}
