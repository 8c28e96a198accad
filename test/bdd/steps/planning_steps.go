package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/altruan/pulpobot/internal/application/planning"
	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/internal/domain/shared"
	"github.com/altruan/pulpobot/test/helpers"
)

type planningContext struct {
	wms      *helpers.FakeWMS
	articles *helpers.FakeArticles
	store    *helpers.FakeRosterStore
	source   *helpers.FakeRosterSource
	notifier *helpers.FakeNotifier
	clock    *shared.MockClock

	orders map[int64]*picking.FulfillmentOrder
	result *planning.RunResult
	err    error
}

func (pc *planningContext) reset() {
	pc.wms = helpers.NewFakeWMS()
	pc.articles = helpers.NewFakeArticles()
	pc.store = &helpers.FakeRosterStore{}
	pc.source = &helpers.FakeRosterSource{Names: map[string][]string{}}
	pc.notifier = &helpers.FakeNotifier{}
	pc.clock = shared.NewMockClock(time.Date(2024, 10, 2, 6, 0, 0, 0, time.UTC))
	pc.orders = make(map[int64]*picking.FulfillmentOrder)
	pc.result = nil
	pc.err = nil
}

// Setup steps

func (pc *planningContext) theWarehouseClockReads(value string) error {
	at, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		return fmt.Errorf("cannot parse clock %q: %w", value, err)
	}
	pc.clock.SetTime(at)
	return nil
}

func (pc *planningContext) theFollowingOrdersAreQueued(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		id, err := strconv.ParseInt(cellValue(table, row, "order"), 10, 64)
		if err != nil {
			return fmt.Errorf("bad order id: %w", err)
		}
		criterium := cellValue(table, row, "criterium")
		productID, err := strconv.ParseInt(cellValue(table, row, "product"), 10, 64)
		if err != nil {
			return fmt.Errorf("bad product id: %w", err)
		}
		quantity, err := strconv.Atoi(cellValue(table, row, "quantity"))
		if err != nil {
			return fmt.Errorf("bad quantity: %w", err)
		}
		name := cellValue(table, row, "name")

		item := picking.Item{
			ProductID: productID,
			Quantity:  quantity,
			Product: picking.Product{
				ID:   productID,
				Name: name,
				SKU:  fmt.Sprintf("SKU-%d", productID),
			},
		}

		order, ok := pc.orders[id]
		if !ok {
			order = &picking.FulfillmentOrder{
				ID:               id,
				SalesOrderID:     id,
				OrderNum:         fmt.Sprintf("SO-%d", id),
				State:            picking.QueueState,
				Priority:         1,
				ShippingMethodID: 500,
				Criterium:        criterium,
				ShipTo:           picking.ShipTo{Address: picking.Address{CountryCode: "276", Zip: "86899"}},
			}
			pc.orders[id] = order
			pc.wms.Orders = append(pc.wms.Orders, order)
		}
		order.Items = append(order.Items, item)
	}
	return nil
}

func (pc *planningContext) orderShipsWithMethod(orderID, method int) error {
	order, ok := pc.orders[int64(orderID)]
	if !ok {
		return fmt.Errorf("order %d is not queued", orderID)
	}
	order.ShippingMethodID = int64(method)
	return nil
}

func (pc *planningContext) orderSellsThroughChannel(orderID int, channel string) error {
	order, ok := pc.orders[int64(orderID)]
	if !ok {
		return fmt.Errorf("order %d is not queued", orderID)
	}
	order.Channel = channel
	return nil
}

func (pc *planningContext) theWarehouseStocks(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		productID, err := strconv.ParseInt(cellValue(table, row, "product"), 10, 64)
		if err != nil {
			return fmt.Errorf("bad product id: %w", err)
		}
		quantity, err := strconv.Atoi(cellValue(table, row, "quantity"))
		if err != nil {
			return fmt.Errorf("bad quantity: %w", err)
		}
		zoneID, err := strconv.ParseInt(cellValue(table, row, "zone"), 10, 64)
		if err != nil {
			return fmt.Errorf("bad zone id: %w", err)
		}
		pc.wms.StockRecords = append(pc.wms.StockRecords, &picking.StockRecord{
			ProductID: productID,
			Quantity:  quantity,
			Location:  picking.StockLocation{Code: cellValue(table, row, "shelf"), ZoneID: zoneID},
		})
	}
	return nil
}

func (pc *planningContext) productShipsUnitsPerPallet(productID, units int) error {
	pc.wms.Products[int64(productID)] = &picking.Product{
		ID:             int64(productID),
		Name:           fmt.Sprintf("Product %d", productID),
		SKU:            fmt.Sprintf("SKU-%d", productID),
		UnitsPerPallet: units,
	}
	return nil
}

func (pc *planningContext) picksAreQueuedAndTaken(queued, taken int) error {
	pc.wms.StateCounts["queue"] = queued
	pc.wms.StateCounts["taken"] = taken
	return nil
}

func (pc *planningContext) aQueuedPickOwnedByNobody(pickID int) error {
	pc.wms.Picks = append(pc.wms.Picks, &picking.PickSummary{ID: int64(pickID)})
	return nil
}

func (pc *planningContext) aQueuedPickOwnedByUser(pickID, userID int) error {
	pc.wms.Picks = append(pc.wms.Picks, &picking.PickSummary{
		ID:    int64(pickID),
		Owner: &picking.User{ID: int64(userID)},
	})
	return nil
}

// Action steps

func (pc *planningContext) thePlannerRuns() error {
	policy := picking.DefaultPolicy()
	orchestrator := planning.NewOrchestrator(
		pc.wms, pc.articles, pc.store, pc.source, pc.notifier,
		&policy, picking.SkusToBatch{}, pc.clock, time.UTC, nil)
	pc.result, pc.err = orchestrator.Run(context.Background())
	return nil
}

// Assertion steps

func (pc *planningContext) theRunFinishesCleanly() error {
	if pc.err != nil {
		return fmt.Errorf("run failed: %w", pc.err)
	}
	if pc.result == nil || pc.result.Status != planning.StatusFinished {
		return fmt.Errorf("expected status %q, got %+v", planning.StatusFinished, pc.result)
	}
	return nil
}

func (pc *planningContext) pickingOrdersAreCreated(count int) error {
	if len(pc.wms.Created) != count {
		return fmt.Errorf("expected %d picking orders, got %d", count, len(pc.wms.Created))
	}
	return nil
}

func (pc *planningContext) noPickingOrdersAreCreated() error {
	return pc.pickingOrdersAreCreated(0)
}

func (pc *planningContext) onePickCoversOrders(list string) error {
	var want []int64
	for _, field := range strings.Split(list, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return fmt.Errorf("bad order id %q: %w", field, err)
		}
		want = append(want, id)
	}
	for _, pick := range pc.wms.Created {
		if sameOrders(pick.SalesOrders, want) {
			return nil
		}
	}
	return fmt.Errorf("no pick covers orders %v, created: %v", want, createdOrders(pc.wms.Created))
}

func (pc *planningContext) thePickForOrderNotes(orderID int, fragment string) error {
	picks := pc.wms.CreatedFor(int64(orderID))
	if len(picks) == 0 {
		return fmt.Errorf("no pick covers order %d", orderID)
	}
	for _, pick := range picks {
		if strings.Contains(pick.Notes, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no pick for order %d notes %q, got %q", orderID, fragment, picks[0].Notes)
}

func (pc *planningContext) thePickForOrderRidesACart(orderID int) error {
	picks := pc.wms.CreatedFor(int64(orderID))
	if len(picks) == 0 {
		return fmt.Errorf("no pick covers order %d", orderID)
	}
	if !picks[0].Cart {
		return fmt.Errorf("pick for order %d is not a cart pick", orderID)
	}
	return nil
}

func (pc *planningContext) noPickCoversOrder(orderID int) error {
	if picks := pc.wms.CreatedFor(int64(orderID)); len(picks) != 0 {
		return fmt.Errorf("expected no pick for order %d, got %d", orderID, len(picks))
	}
	return nil
}

func (pc *planningContext) salesOrderIsPaused(salesOrderID int) error {
	for _, id := range pc.wms.Paused {
		if id == int64(salesOrderID) {
			return nil
		}
	}
	return fmt.Errorf("sales order %d was not paused, paused: %v", salesOrderID, pc.wms.Paused)
}

func (pc *planningContext) pickIsDeleted(pickID int) error {
	for _, id := range pc.wms.Deleted {
		if id == int64(pickID) {
			return nil
		}
	}
	return fmt.Errorf("pick %d was not deleted, deleted: %v", pickID, pc.wms.Deleted)
}

func (pc *planningContext) pickIsKept(pickID int) error {
	for _, id := range pc.wms.Deleted {
		if id == int64(pickID) {
			return fmt.Errorf("pick %d was deleted", pickID)
		}
	}
	return nil
}

// cellValue looks a cell up by column name, using the first row as the header
func cellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}
	return ""
}

func sameOrders(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func createdOrders(picks []picking.PickingOrder) [][]int64 {
	out := make([][]int64, 0, len(picks))
	for _, pick := range picks {
		out = append(out, pick.SalesOrders)
	}
	return out
}

// InitializePlanningScenario registers all planning step definitions
func InitializePlanningScenario(sc *godog.ScenarioContext) {
	pc := &planningContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	// Setup steps
	sc.Step(`^the warehouse clock reads "([^"]*)"$`, pc.theWarehouseClockReads)
	sc.Step(`^the following orders are queued:$`, pc.theFollowingOrdersAreQueued)
	sc.Step(`^order (\d+) ships with method (\d+)$`, pc.orderShipsWithMethod)
	sc.Step(`^order (\d+) sells through the "([^"]*)" channel$`, pc.orderSellsThroughChannel)
	sc.Step(`^the warehouse stocks:$`, pc.theWarehouseStocks)
	sc.Step(`^product (\d+) ships (\d+) units per pallet$`, pc.productShipsUnitsPerPallet)
	sc.Step(`^(\d+) picks are queued and (\d+) are taken$`, pc.picksAreQueuedAndTaken)
	sc.Step(`^a queued pick (\d+) owned by nobody$`, pc.aQueuedPickOwnedByNobody)
	sc.Step(`^a queued pick (\d+) owned by user (\d+)$`, pc.aQueuedPickOwnedByUser)

	// Action steps
	sc.Step(`^the planner runs$`, pc.thePlannerRuns)

	// Assertion steps
	sc.Step(`^the run finishes cleanly$`, pc.theRunFinishesCleanly)
	sc.Step(`^(\d+) picking orders? (?:is|are) created$`, pc.pickingOrdersAreCreated)
	sc.Step(`^no picking orders are created$`, pc.noPickingOrdersAreCreated)
	sc.Step(`^one pick covers orders ([\d, ]+)$`, pc.onePickCoversOrders)
	sc.Step(`^the pick for order (\d+) notes "([^"]*)"$`, pc.thePickForOrderNotes)
	sc.Step(`^the pick for order (\d+) rides a cart$`, pc.thePickForOrderRidesACart)
	sc.Step(`^no pick covers order (\d+)$`, pc.noPickCoversOrder)
	sc.Step(`^sales order (\d+) is paused$`, pc.salesOrderIsPaused)
	sc.Step(`^pick (\d+) is deleted$`, pc.pickIsDeleted)
	sc.Step(`^pick (\d+) is kept$`, pc.pickIsKept)
}
