package planning

import (
	"time"

	"github.com/google/uuid"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// RunContext is the mutable state one orchestrator invocation threads through
// every planner: the frozen wall clock, the stock snapshot, and the set of
// sales orders already committed to a pick. Planners mutate it in place; it
// never outlives the run.
type RunContext struct {
	ID       string
	Now      time.Time
	Sweeping bool

	// RunningDry is set after separation when the queue is shallow; it
	// scales batch and cart minimums down
	RunningDry bool

	// NoSpaceLeft sticks once the non-priority pick backlog exceeds the
	// threshold; outside sweeping time it stops the cart stage for the
	// rest of the run
	NoSpaceLeft bool

	// OrdersCount counts every suitable order seen during separation
	OrdersCount int

	Shelves   picking.ShelvesIndex
	Stock     picking.Availability
	processed map[int64]struct{}
}

// NewRunContext starts a run at the given warehouse-local instant
func NewRunContext(now time.Time, sweeping bool) *RunContext {
	return &RunContext{
		ID:        uuid.NewString(),
		Now:       now,
		Sweeping:  sweeping,
		Shelves:   make(picking.ShelvesIndex),
		Stock:     make(picking.Availability),
		processed: make(map[int64]struct{}),
	}
}

// MarkProcessed commits sales orders; no later planner will touch them
func (rc *RunContext) MarkProcessed(salesOrderIDs ...int64) {
	for _, id := range salesOrderIDs {
		rc.processed[id] = struct{}{}
	}
}

// IsProcessed reports whether the sales order is already in a pick
func (rc *RunContext) IsProcessed(salesOrderID int64) bool {
	_, ok := rc.processed[salesOrderID]
	return ok
}

// Unprocessed filters the slice down to orders not yet in a pick, keeping
// input order
func (rc *RunContext) Unprocessed(orders []*picking.FulfillmentOrder) []*picking.FulfillmentOrder {
	kept := make([]*picking.FulfillmentOrder, 0, len(orders))
	for _, order := range orders {
		if !rc.IsProcessed(order.SalesOrderID) {
			kept = append(kept, order)
		}
	}
	return kept
}
