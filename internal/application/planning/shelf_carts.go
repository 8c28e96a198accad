package planning

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// shelfPass creates carts around the busiest shelves: shelves hosting items
// of enough orders get a cart filled from the orders they can serve. Returns
// the space left for the random pass.
func (b *cartBuilder) shelfPass(ctx context.Context, size picking.CartSize, spaceLeft int) int {
	frequency := b.shelfFrequency()
	shelves := b.selectShelves(frequency, size.Min)
	if len(shelves) == 0 {
		return spaceLeft
	}
	b.planner.logger.Info("selected shelves",
		zap.String("size", size.Code),
		zap.Strings("shelves", shelves))

	for _, shelf := range shelves {
		if spaceLeft == 0 {
			break
		}
		cart := b.fillFromShelf(ctx, shelf, size.Max)
		if len(cart) == 0 {
			continue
		}
		if b.commit(ctx, size, cart, shelf) {
			spaceLeft--
			b.consume(cart)
		}
	}
	return spaceLeft
}

// shelfFrequency counts, per shelf, how many orders have at least one item
// stored there. Each order contributes one count per shelf at most.
func (b *cartBuilder) shelfFrequency() map[string]int {
	frequency := make(map[string]int)
	for _, order := range b.orders {
		shelves := make(map[string]struct{})
		for _, item := range order.Items {
			for _, shelf := range b.rc.Shelves.ShelvesWithProduct(item.ProductID) {
				shelves[shelf] = struct{}{}
			}
		}
		for shelf := range shelves {
			frequency[shelf]++
		}
	}
	return frequency
}

// selectShelves keeps shelves serving at least the cart minimum of orders,
// busiest first, ties by shelf code
func (b *cartBuilder) selectShelves(frequency map[string]int, minimum int) []string {
	threshold := float64(minimum)
	if b.rc.RunningDry {
		threshold *= b.planner.policy.RunningDryDenominator
	}

	var shelves []string
	for shelf, count := range frequency {
		if float64(count) >= threshold {
			shelves = append(shelves, shelf)
		}
	}
	sort.Slice(shelves, func(i, j int) bool {
		if frequency[shelves[i]] != frequency[shelves[j]] {
			return frequency[shelves[i]] > frequency[shelves[j]]
		}
		return shelves[i] < shelves[j]
	})
	return shelves
}

// fillFromShelf scans the size's orders and collects up to max of them that
// have an item on the shelf and fit under the remaining stock
func (b *cartBuilder) fillFromShelf(ctx context.Context, shelf string, max int) []int64 {
	var cart []int64
	inCartIDs := make(map[int64]struct{})
	inCartQty := make(map[int64]int)

	for _, order := range b.orders {
		if len(cart) >= max {
			break
		}
		if b.rc.IsProcessed(order.SalesOrderID) {
			continue
		}
		if _, ok := inCartIDs[order.SalesOrderID]; ok {
			continue
		}
		if !b.orderOnShelf(order, shelf) {
			continue
		}
		if !b.fullyAvailable(ctx, order, inCartQty) {
			continue
		}
		cart = append(cart, order.SalesOrderID)
		inCartIDs[order.SalesOrderID] = struct{}{}
		b.claim(inCartQty, order)
	}
	return cart
}

func (b *cartBuilder) orderOnShelf(order *picking.FulfillmentOrder, shelf string) bool {
	for _, item := range order.Items {
		if b.rc.Shelves.Contains(shelf, item.ProductID) {
			return true
		}
	}
	return false
}
