package driver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	defs "cellrun/definitions"
	er "cellrun/errors"
	"cellrun/pkg/cell"
)

// DomainState is the outward state vocabulary, independent of the tool's
// cell states. Both running variants collapse to DomainRunning.
type DomainState int

const (
	DomainNoState DomainState = iota
	DomainRunning
	DomainShutoff
	DomainCrashed
)

func (s DomainState) String() string {
	switch s {
	case DomainRunning:
		return "running"
	case DomainShutoff:
		return "shut off"
	case DomainCrashed:
		return "crashed"
	default:
		return "no-state"
	}
}

func domainStateOf(s cell.State) DomainState {
	switch s {
	case cell.StateRunning, cell.StateRunningLocked:
		return DomainRunning
	case cell.StateShutdown:
		return DomainShutoff
	case cell.StateFailed:
		return DomainCrashed
	default:
		return DomainNoState
	}
}

// Domain is the outward representation of a cell. ID carries the cell's
// current integer id while the cell is active and InactiveDomainID
// otherwise; Name and UUID identify the cell either way.
type Domain struct {
	Name string
	UUID uuid.UUID
	ID   int
}

// DomainInfo mirrors the classic get-info quintuple. Jailhouse exposes no
// memory or CPU-time accounting, those fields stay zero.
type DomainInfo struct {
	State     DomainState
	MaxMem    uint64
	Memory    uint64
	NrVirtCPU int
	CPUTime   uint64
}

func domainOf(c *cell.Cell) Domain {
	d := Domain{Name: c.Name, UUID: c.UUID, ID: defs.InactiveDomainID}
	if c.State.Active() {
		d.ID = c.ID
	}
	return d
}

// CountDomains retakes the snapshot and counts the active cells.
func (c *Connection) CountDomains(ctx context.Context) (int, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	if err := c.refresh(ctx); err != nil {
		return 0, err
	}
	n := 0
	for i := range c.cells {
		if c.cells[i].State.Active() {
			n++
		}
	}
	return n, nil
}

// ListDomainIDs returns the ids of the active cells in snapshot order. A
// negative max means no bound.
func (c *Connection) ListDomainIDs(ctx context.Context, max int) ([]int, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	ids := []int{}
	for i := range c.cells {
		if max >= 0 && len(ids) >= max {
			break
		}
		if c.cells[i].State.Active() {
			ids = append(ids, c.cells[i].ID)
		}
	}
	return ids, nil
}

// ListAllDomains returns a handle for every cell in the snapshot, active or
// not, in the tool's row order.
func (c *Connection) ListAllDomains(ctx context.Context) ([]Domain, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	domains := make([]Domain, 0, len(c.cells))
	for i := range c.cells {
		domains = append(domains, domainOf(&c.cells[i]))
	}
	return domains, nil
}

// LookupByID matches active cells only; a shut-down cell has no usable id.
func (c *Connection) LookupByID(ctx context.Context, id int) (Domain, error) {
	if err := c.guard(); err != nil {
		return Domain{}, err
	}
	if err := c.refresh(ctx); err != nil {
		return Domain{}, err
	}
	for i := range c.cells {
		if c.cells[i].ID == id && c.cells[i].State.Active() {
			return domainOf(&c.cells[i]), nil
		}
	}
	return Domain{}, errors.Wrapf(er.NoSuchDomain, "id %d", id)
}

func (c *Connection) LookupByName(ctx context.Context, name string) (Domain, error) {
	if err := c.guard(); err != nil {
		return Domain{}, err
	}
	if name == "" {
		return Domain{}, errors.WithStack(er.EmptyCellName)
	}
	if err := c.refresh(ctx); err != nil {
		return Domain{}, err
	}
	if found := c.findByName(name); found != nil {
		return domainOf(found), nil
	}
	return Domain{}, errors.Wrapf(er.NoSuchDomain, "name %q", name)
}

func (c *Connection) LookupByUUID(ctx context.Context, u uuid.UUID) (Domain, error) {
	if err := c.guard(); err != nil {
		return Domain{}, err
	}
	if err := c.refresh(ctx); err != nil {
		return Domain{}, err
	}
	for i := range c.cells {
		if c.cells[i].UUID == u {
			return domainOf(&c.cells[i]), nil
		}
	}
	return Domain{}, errors.Wrapf(er.NoSuchDomain, "uuid %s", u)
}

// GetState resamples and reports the domain's current state. A cell that
// has disappeared from the list is an error, distinct from "shut off".
func (c *Connection) GetState(ctx context.Context, dom Domain) (DomainState, error) {
	if err := c.guard(); err != nil {
		return DomainNoState, err
	}
	if err := c.refresh(ctx); err != nil {
		return DomainNoState, err
	}
	found := c.findByName(dom.Name)
	if found == nil {
		return DomainNoState, errors.Wrapf(er.CellGone, "cell %q", dom.Name)
	}
	return domainStateOf(found.State), nil
}

// GetInfo resamples and fills the info quintuple. nrVirtCpu is the number
// of CPUs currently assigned to the cell.
func (c *Connection) GetInfo(ctx context.Context, dom Domain) (DomainInfo, error) {
	if err := c.guard(); err != nil {
		return DomainInfo{}, err
	}
	if err := c.refresh(ctx); err != nil {
		return DomainInfo{}, err
	}
	found := c.findByName(dom.Name)
	if found == nil {
		return DomainInfo{}, errors.Wrapf(er.CellGone, "cell %q", dom.Name)
	}
	return DomainInfo{
		State:     domainStateOf(found.State),
		NrVirtCPU: found.AssignedCPUs.Size(),
	}, nil
}

// GetXMLDesc returns a minimal domain document for GUI consumers. Only the
// identity triple is known; there is no device or memory model to describe.
func (c *Connection) GetXMLDesc(dom Domain) (string, error) {
	if err := c.guard(); err != nil {
		return "", err
	}
	return fmt.Sprintf("<domain type=\"jailhouse\">\n"+
		"  <name>%s</name>\n"+
		"  <uuid>%s</uuid>\n"+
		"  <id>%d</id>\n"+
		"</domain>\n", dom.Name, dom.UUID, dom.ID), nil
}

// Capabilities returns the empty capabilities document GUI consumers expect.
func (c *Connection) Capabilities() string {
	return "<capabilities></capabilities>"
}

// Create starts the cell. The cell must already be loaded; this driver does
// not create cells from a configuration description.
func (c *Connection) Create(ctx context.Context, dom Domain) error {
	return c.lifecycle(ctx, "start", dom)
}

// Shutdown stops the cell gracefully.
func (c *Connection) Shutdown(ctx context.Context, dom Domain) error {
	return c.lifecycle(ctx, "shutdown", dom)
}

// Destroy tears the cell down entirely. This is the Jailhouse destroy, not a
// forced stop: the cell is removed and must be created and loaded again. No
// implicit shutdown is attempted first.
func (c *Connection) Destroy(ctx context.Context, dom Domain) error {
	return c.lifecycle(ctx, "destroy", dom)
}

// lifecycle resolves the cell's current id from a fresh snapshot (handle ids
// go stale, and inactive handles carry the sentinel) and emits
// `cell <verb> <id>`. Exit status 0 is the only success signal.
func (c *Connection) lifecycle(ctx context.Context, verb string, dom Domain) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := c.refresh(ctx); err != nil {
		return err
	}
	found := c.findByName(dom.Name)
	if found == nil {
		return errors.Wrapf(er.NoSuchDomain, "cell %q", dom.Name)
	}
	_, err := c.tool.Run(ctx, "cell", verb, strconv.Itoa(found.ID))
	return err
}
