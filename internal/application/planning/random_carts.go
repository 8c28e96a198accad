package planning

import (
	"context"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// randomPass carts up whatever the shelf pass left over, in input order.
// Each cart gets a fresh commitment map; the pass stops when the space runs
// out or a scan admits nothing.
func (b *cartBuilder) randomPass(ctx context.Context, size picking.CartSize, orders []*picking.FulfillmentOrder, spaceLeft int) int {
	if len(orders) == 0 {
		return spaceLeft
	}
	numCarts := (len(orders) + size.Max - 1) / size.Max
	b.planner.logger.Info("filling carts randomly",
		zap.String("size", size.Code),
		zap.Int("orders", len(orders)),
		zap.Int("carts", numCarts))

	for cartNum := 0; cartNum < numCarts; cartNum++ {
		if spaceLeft == 0 {
			break
		}

		var cart []int64
		inCartQty := make(map[int64]int)
		for _, order := range orders {
			if len(cart) >= size.Max {
				break
			}
			if b.rc.IsProcessed(order.SalesOrderID) {
				continue
			}
			if !b.fullyAvailable(ctx, order, inCartQty) {
				continue
			}
			cart = append(cart, order.SalesOrderID)
			b.claim(inCartQty, order)
		}
		if len(cart) == 0 {
			break
		}

		if b.commit(ctx, size, cart, "") {
			spaceLeft--
			b.consume(cart)
		} else {
			break
		}
	}
	return spaceLeft
}
