package driver

import (
	"context"
	"net/url"
	"sync"

	"github.com/pkg/errors"

	defs "cellrun/definitions"
	er "cellrun/errors"
)

// OpenFunc opens a connection for one URI scheme.
type OpenFunc func(ctx context.Context, uri string) (*Connection, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]OpenFunc{}
)

// Register claims a URI scheme. The jailhouse scheme registers itself; the
// hook exists so an embedding framework can mount the driver alongside
// others.
func Register(scheme string, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[scheme] = open
}

// OpenURI dispatches on the URI scheme to the registered driver.
func OpenURI(ctx context.Context, rawURI string) (*Connection, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, errors.Wrapf(er.InvalidURI, "%q: %v", rawURI, err)
	}
	driversMu.RLock()
	open, ok := drivers[u.Scheme]
	driversMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(er.InvalidURI, "no driver for scheme %q", u.Scheme)
	}
	return open(ctx, rawURI)
}

func init() {
	Register(defs.URIScheme, Open)
}
