package picking

import "context"

// OrderStream is a pull-based iterator over paginated fulfillment orders.
// Next reports whether another order is buffered or fetchable; after Next
// returns false the caller must check Err.
type OrderStream interface {
	Next() bool
	Order() *FulfillmentOrder
	Err() error
}

// StockStream is a pull-based iterator over paginated stock records
type StockStream interface {
	Next() bool
	Stock() *StockRecord
	Err() error
}

// PickSummary is the slice of a picking order the maintenance tasks look at
type PickSummary struct {
	ID    int64 `json:"id"`
	Owner *User `json:"owner,omitempty"`
}

// PickStream is a pull-based iterator over paginated picking orders
type PickStream interface {
	Next() bool
	Pick() *PickSummary
	Err() error
}

// ProductUpdate is the subset of product fields written back to the WMS once
// pallet capacity has been derived
type ProductUpdate struct {
	UnitsPerPallet int      `json:"units_per_pallet"`
	Barcodes       []string `json:"barcodes"`
}

// WMS is the warehouse backend. One session serves a whole run; only the
// orchestrator closes it.
type WMS interface {
	// QueuedOrders streams every fulfillment order in queue state
	QueuedOrders(ctx context.Context) OrderStream

	// Stocks streams all warehouse stock records
	Stocks(ctx context.Context) StockStream

	// QueuedPicks streams picking orders in queue state
	QueuedPicks(ctx context.Context) PickStream

	// StockLevel sums a product's stock across the picking zones
	StockLevel(ctx context.Context, productID int64) (int, error)

	// Product fetches a product record
	Product(ctx context.Context, productID int64) (*Product, error)

	// UpdateProduct writes derived pallet capacity back to the product
	UpdateProduct(ctx context.Context, productID int64, update ProductUpdate) error

	// CreatePicking posts one picking order
	CreatePicking(ctx context.Context, pick *PickingOrder) error

	// DeletePicking removes a picking order
	DeletePicking(ctx context.Context, pickingOrderID int64) error

	// CountPicking counts picking orders in a state, one page deep
	CountPicking(ctx context.Context, state string) (int, error)

	// CountPicksOwnedBy counts queued picking orders assigned to a user
	CountPicksOwnedBy(ctx context.Context, userID int64) (int, error)

	// PauseSalesOrder pauses a sales order; the id is the sales order id,
	// not the fulfillment order id
	PauseSalesOrder(ctx context.Context, salesOrderID int64) error

	// FindUser resolves a username to a WMS user, nil when unknown
	FindUser(ctx context.Context, username string) (*User, error)

	// Close releases the session
	Close() error
}

// Articles is the article-master service consulted when the WMS has no
// pallet capacity for a product. Found is false when the service has no
// usable packaging data either.
type Articles interface {
	UnitsPerPallet(ctx context.Context, product *Product) (units int, found bool, err error)
}

// RosterStore persists the picker roster between runs
type RosterStore interface {
	Load(ctx context.Context) (Roster, error)
	Save(ctx context.Context, roster Roster) error
}

// RosterSource reads the maintained picker lists, usernames per roster
// category
type RosterSource interface {
	Usernames(ctx context.Context) (map[string][]string, error)
}

// Notifier delivers operator alerts outside the log stream
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
