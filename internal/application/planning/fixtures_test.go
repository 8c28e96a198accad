package planning_test

import (
	"fmt"
	"time"

	"github.com/altruan/pulpobot/internal/application/planning"
	"github.com/altruan/pulpobot/internal/domain/picking"
)

// runClock is the pinned instant the planner tests run at, a Wednesday morning
var runClock = time.Date(2024, 10, 2, 6, 0, 0, 0, time.UTC)

func defaultPolicy() *picking.Policy {
	policy := picking.DefaultPolicy()
	return &policy
}

func newClassifier(policy *picking.Policy, skus picking.SkusToBatch) *picking.Classifier {
	if skus == nil {
		skus = picking.SkusToBatch{}
	}
	return picking.NewClassifier(policy, runClock, skus)
}

func newRunContext(sweeping bool) *planning.RunContext {
	return planning.NewRunContext(runClock, sweeping)
}

func orderItem(productID int64, quantity int, name string) picking.Item {
	return picking.Item{
		ProductID: productID,
		Quantity:  quantity,
		Product: picking.Product{
			ID:   productID,
			Name: name,
			SKU:  fmt.Sprintf("SKU-%d", productID),
		},
	}
}

// queuedOrder builds a plain non-priority order shipping to a near-range
// German address
func queuedOrder(id int64, criterium string, items ...picking.Item) *picking.FulfillmentOrder {
	return &picking.FulfillmentOrder{
		ID:               id,
		SalesOrderID:     id,
		OrderNum:         fmt.Sprintf("SO-%d", id),
		State:            picking.QueueState,
		Priority:         1,
		ShippingMethodID: 500,
		Criterium:        criterium,
		ShipTo:           picking.ShipTo{Address: picking.Address{CountryCode: "276", Zip: "86899"}},
		Items:            items,
	}
}
