package helpers

import (
	"context"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// FakeWMS is an in-memory warehouse backend for planner and orchestrator
// tests. Reads serve the seeded fixtures; writes are recorded for
// assertions. Function fields override individual operations when a test
// needs failure behavior.
type FakeWMS struct {
	Orders       []*picking.FulfillmentOrder
	StockRecords []*picking.StockRecord
	Picks        []*picking.PickSummary
	Products     map[int64]*picking.Product
	StockLevels  map[int64]int
	Users        map[string]*picking.User
	OwnedPicks   map[int64]int
	StateCounts  map[string]int

	Created        []picking.PickingOrder
	Deleted        []int64
	Paused         []int64
	ProductUpdates map[int64]picking.ProductUpdate
	CloseCalls     int

	CreatePickingFn func(pick *picking.PickingOrder) error
	CountPickingFn  func(state string) (int, error)
	StockLevelFn    func(productID int64) (int, error)
}

// NewFakeWMS returns an empty backend ready for seeding
func NewFakeWMS() *FakeWMS {
	return &FakeWMS{
		Products:       make(map[int64]*picking.Product),
		StockLevels:    make(map[int64]int),
		Users:          make(map[string]*picking.User),
		OwnedPicks:     make(map[int64]int),
		StateCounts:    make(map[string]int),
		ProductUpdates: make(map[int64]picking.ProductUpdate),
	}
}

type fakeOrderStream struct {
	orders []*picking.FulfillmentOrder
	pos    int
}

func (s *fakeOrderStream) Next() bool {
	s.pos++
	return s.pos <= len(s.orders)
}

func (s *fakeOrderStream) Order() *picking.FulfillmentOrder { return s.orders[s.pos-1] }

func (s *fakeOrderStream) Err() error { return nil }

type fakeStockStream struct {
	records []*picking.StockRecord
	pos     int
}

func (s *fakeStockStream) Next() bool {
	s.pos++
	return s.pos <= len(s.records)
}

func (s *fakeStockStream) Stock() *picking.StockRecord { return s.records[s.pos-1] }

func (s *fakeStockStream) Err() error { return nil }

type fakePickStream struct {
	picks []*picking.PickSummary
	pos   int
}

func (s *fakePickStream) Next() bool {
	s.pos++
	return s.pos <= len(s.picks)
}

func (s *fakePickStream) Pick() *picking.PickSummary { return s.picks[s.pos-1] }

func (s *fakePickStream) Err() error { return nil }

func (f *FakeWMS) QueuedOrders(ctx context.Context) picking.OrderStream {
	return &fakeOrderStream{orders: f.Orders}
}

func (f *FakeWMS) Stocks(ctx context.Context) picking.StockStream {
	return &fakeStockStream{records: f.StockRecords}
}

func (f *FakeWMS) QueuedPicks(ctx context.Context) picking.PickStream {
	return &fakePickStream{picks: f.Picks}
}

func (f *FakeWMS) StockLevel(ctx context.Context, productID int64) (int, error) {
	if f.StockLevelFn != nil {
		return f.StockLevelFn(productID)
	}
	return f.StockLevels[productID], nil
}

func (f *FakeWMS) Product(ctx context.Context, productID int64) (*picking.Product, error) {
	if product, ok := f.Products[productID]; ok {
		return product, nil
	}
	return &picking.Product{ID: productID}, nil
}

func (f *FakeWMS) UpdateProduct(ctx context.Context, productID int64, update picking.ProductUpdate) error {
	f.ProductUpdates[productID] = update
	if product, ok := f.Products[productID]; ok {
		product.UnitsPerPallet = update.UnitsPerPallet
	}
	return nil
}

func (f *FakeWMS) CreatePicking(ctx context.Context, pick *picking.PickingOrder) error {
	if f.CreatePickingFn != nil {
		if err := f.CreatePickingFn(pick); err != nil {
			return err
		}
	}
	recorded := *pick
	if len(recorded.SalesOrders) == 1 {
		recorded.Cart = false
	}
	f.Created = append(f.Created, recorded)
	return nil
}

func (f *FakeWMS) DeletePicking(ctx context.Context, pickingOrderID int64) error {
	f.Deleted = append(f.Deleted, pickingOrderID)
	return nil
}

func (f *FakeWMS) CountPicking(ctx context.Context, state string) (int, error) {
	if f.CountPickingFn != nil {
		return f.CountPickingFn(state)
	}
	return f.StateCounts[state], nil
}

func (f *FakeWMS) CountPicksOwnedBy(ctx context.Context, userID int64) (int, error) {
	return f.OwnedPicks[userID], nil
}

func (f *FakeWMS) PauseSalesOrder(ctx context.Context, salesOrderID int64) error {
	f.Paused = append(f.Paused, salesOrderID)
	return nil
}

func (f *FakeWMS) FindUser(ctx context.Context, username string) (*picking.User, error) {
	return f.Users[username], nil
}

func (f *FakeWMS) Close() error {
	f.CloseCalls++
	return nil
}

// CreatedNotes lists the notes of all recorded picks, in creation order
func (f *FakeWMS) CreatedNotes() []string {
	notes := make([]string, len(f.Created))
	for i, pick := range f.Created {
		notes[i] = pick.Notes
	}
	return notes
}

// CreatedFor returns the picks containing the sales order
func (f *FakeWMS) CreatedFor(salesOrderID int64) []picking.PickingOrder {
	var picks []picking.PickingOrder
	for _, pick := range f.Created {
		for _, id := range pick.SalesOrders {
			if id == salesOrderID {
				picks = append(picks, pick)
				break
			}
		}
	}
	return picks
}
