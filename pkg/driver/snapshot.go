package driver

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	log "cellrun/logger"
	"cellrun/pkg/cell"
)

// refresh retakes the cell snapshot: run `cell list`, parse the table, carry
// every surviving cell's UUID over from the outgoing snapshot, then install
// the new one. On any tool or parse error the existing snapshot stays as it
// was; the swap happens only after the new snapshot is fully built and the
// UUID merge has read everything it needs from the old one.
func (c *Connection) refresh(ctx context.Context) error {
	ctx, span := otel.Tracer("cellrun/driver").Start(ctx, "driver.refresh")
	defer span.End()

	out, err := c.tool.Run(ctx, "cell", "list")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	next, err := cell.ParseList(out)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for i := range next {
		next[i].UUID = c.carryUUID(next[i].Name)
	}
	c.cells = next

	span.SetAttributes(attribute.Int("cells.count", len(next)))
	log.Pretty("cell snapshot refreshed: %v", next)
	return nil
}

// carryUUID keeps a cell's UUID stable across refreshes as long as a cell
// with the same name keeps appearing. Identity is the name, not the id: ids
// get reassigned after shutdown/recreate cycles. A name not present in the
// outgoing snapshot gets a fresh random UUID.
func (c *Connection) carryUUID(name string) uuid.UUID {
	for _, prev := range c.cells {
		if prev.Name == name {
			return prev.UUID
		}
	}
	return uuid.New()
}

// findByName scans the current snapshot. Returns nil if the name is gone.
func (c *Connection) findByName(name string) *cell.Cell {
	for i := range c.cells {
		if c.cells[i].Name == name {
			return &c.cells[i]
		}
	}
	return nil
}
