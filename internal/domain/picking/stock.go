package picking

import "github.com/altruan/pulpobot/internal/domain/shared"

// ShelfNameLength is how many leading characters of a location code name the
// shelf; the remainder encodes the level and position within it
const ShelfNameLength = 6

// StockLocation is the physical slot a stock row lives in
type StockLocation struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	ZoneID int64  `json:"zone_id"`
}

// StockRecord is one WMS stock row
type StockRecord struct {
	ID        int64         `json:"id"`
	ProductID int64         `json:"product_id"`
	Quantity  int           `json:"quantity"`
	Location  StockLocation `json:"location"`
}

// Shelf derives the shelf name from the record's location code. Codes shorter
// than the shelf prefix are used whole.
func (r *StockRecord) Shelf() (string, error) {
	code := r.Location.Code
	if code == "" {
		return "", shared.NewMalformedStockError("empty location code")
	}
	if len(code) < ShelfNameLength {
		return code, nil
	}
	return code[:ShelfNameLength], nil
}

// ShelvesIndex maps a shelf name to the set of products stored on it
type ShelvesIndex map[string]map[int64]struct{}

// Add registers a product on a shelf
func (idx ShelvesIndex) Add(shelf string, productID int64) {
	products, ok := idx[shelf]
	if !ok {
		products = make(map[int64]struct{})
		idx[shelf] = products
	}
	products[productID] = struct{}{}
}

// Contains reports whether the shelf holds the product
func (idx ShelvesIndex) Contains(shelf string, productID int64) bool {
	_, ok := idx[shelf][productID]
	return ok
}

// ShelvesWithProduct returns every shelf the product is stored on
func (idx ShelvesIndex) ShelvesWithProduct(productID int64) []string {
	var shelves []string
	for shelf, products := range idx {
		if _, ok := products[productID]; ok {
			shelves = append(shelves, shelf)
		}
	}
	return shelves
}

// Availability is the per-product running stock within the picking zones.
// It is built once per run and decremented as planners commit picks.
type Availability map[int64]int

// Add accumulates quantity for a product
func (a Availability) Add(productID int64, quantity int) {
	a[productID] += quantity
}

// Available returns the remaining quantity for a product, zero when unknown
func (a Availability) Available(productID int64) int {
	return a[productID]
}

// Consume decrements the remaining quantity for a product
func (a Availability) Consume(productID int64, quantity int) {
	a[productID] -= quantity
}

// Set overwrites the remaining quantity for a product
func (a Availability) Set(productID int64, quantity int) {
	a[productID] = quantity
}

// Has reports whether a product has a recorded quantity at all
func (a Availability) Has(productID int64) bool {
	_, ok := a[productID]
	return ok
}

// Clone copies the availability map so a planner can run what-if checks
// without touching the run snapshot
func (a Availability) Clone() Availability {
	out := make(Availability, len(a))
	for id, qty := range a {
		out[id] = qty
	}
	return out
}
