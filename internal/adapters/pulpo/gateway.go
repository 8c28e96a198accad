package pulpo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// StocksPageSize is the larger page used for the full stock scan; stock rows
// are small and the warehouse holds tens of thousands of them
const StocksPageSize = 3000

// Gateway adapts the WMS HTTP API to the picking.WMS port. Malformed records
// inside a page are logged and skipped; the page walk itself surfaces errors
// through the stream's Err.
type Gateway struct {
	client *Client
	policy *picking.Policy
	logger *zap.Logger
}

// NewGateway wraps a client. The policy supplies the picking zones the
// stock-level lookup sums over.
func NewGateway(client *Client, policy *picking.Policy, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, policy: policy, logger: logger}
}

// QueuedOrders streams every fulfillment order in queue state
func (g *Gateway) QueuedOrders(ctx context.Context) picking.OrderStream {
	params := url.Values{"state": {picking.QueueState}}
	return &orderStream{
		pages:  g.client.Paginate(ctx, "sales/orders/fulfillments", params, 0, 0),
		logger: g.logger,
	}
}

// Stocks streams all warehouse stock records
func (g *Gateway) Stocks(ctx context.Context) picking.StockStream {
	return &stockStream{
		pages:  g.client.Paginate(ctx, "inventory/stocks", nil, StocksPageSize, 0),
		logger: g.logger,
	}
}

// QueuedPicks streams picking orders in queue state
func (g *Gateway) QueuedPicks(ctx context.Context) picking.PickStream {
	params := url.Values{"state": {picking.QueueState}}
	return &pickStream{
		pages:  g.client.Paginate(ctx, "picking/orders", params, 0, 0),
		logger: g.logger,
	}
}

// StockLevel sums a product's stock across the picking zones
func (g *Gateway) StockLevel(ctx context.Context, productID int64) (int, error) {
	params := url.Values{"product_id": {strconv.FormatInt(productID, 10)}}
	raw, err := g.client.Request(ctx, http.MethodGet, "inventory/stocks", params, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch stock for product %d: %w", productID, err)
	}

	var records []picking.StockRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			return 0, &DecodeError{Endpoint: "inventory/stocks", Err: err}
		}
	}

	total := 0
	for _, record := range records {
		if g.policy.IsPickingZone(record.Location.ZoneID) {
			total += record.Quantity
		}
	}
	return total, nil
}

// Product fetches a product record
func (g *Gateway) Product(ctx context.Context, productID int64) (*picking.Product, error) {
	endpoint := "inventory/products/" + strconv.FormatInt(productID, 10)
	raw, err := g.client.Request(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}

	var product picking.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	return &product, nil
}

// UpdateProduct writes derived pallet capacity back to the product
func (g *Gateway) UpdateProduct(ctx context.Context, productID int64, update picking.ProductUpdate) error {
	endpoint := "inventory/products/" + strconv.FormatInt(productID, 10)
	if update.Barcodes == nil {
		update.Barcodes = []string{}
	}
	if _, err := g.client.Request(ctx, http.MethodPut, endpoint, nil, update); err != nil {
		return fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	return nil
}

// CreatePicking posts one picking order. A pick over a single sales order is
// never a cart, whatever the caller asked for.
func (g *Gateway) CreatePicking(ctx context.Context, pick *picking.PickingOrder) error {
	body := *pick
	if len(body.SalesOrders) == 1 {
		body.Cart = false
	}
	if body.Pickers == nil {
		body.Pickers = []int64{}
	}

	if _, err := g.client.Request(ctx, http.MethodPost, "picking/orders", nil, body); err != nil {
		return fmt.Errorf("failed to create picking order for %v: %w", body.SalesOrders, err)
	}
	g.logger.Info("picking order created",
		zap.Int64s("sales_orders", body.SalesOrders),
		zap.String("notes", body.Notes))
	return nil
}

// CreateBulkPicking posts several picking orders in one call
func (g *Gateway) CreateBulkPicking(ctx context.Context, picks []picking.PickingOrder) error {
	body := map[string][]picking.PickingOrder{"picking_orders": picks}
	if _, err := g.client.Request(ctx, http.MethodPost, "picking/orders/bulk", nil, body); err != nil {
		return fmt.Errorf("failed to create picking order bulk: %w", err)
	}
	return nil
}

// DeletePicking removes a picking order
func (g *Gateway) DeletePicking(ctx context.Context, pickingOrderID int64) error {
	endpoint := "picking/orders/" + strconv.FormatInt(pickingOrderID, 10)
	if _, err := g.client.Request(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to delete picking order %d: %w", pickingOrderID, err)
	}
	return nil
}

// CountPicking counts picking orders in a state, one page deep
func (g *Gateway) CountPicking(ctx context.Context, state string) (int, error) {
	params := url.Values{
		"state": {state},
		"limit": {strconv.Itoa(DefaultPageSize)},
	}
	return g.countPicks(ctx, params)
}

// CountPicksOwnedBy counts queued picking orders assigned to a user
func (g *Gateway) CountPicksOwnedBy(ctx context.Context, userID int64) (int, error) {
	params := url.Values{
		"state":    {picking.QueueState},
		"owner_id": {strconv.FormatInt(userID, 10)},
	}
	return g.countPicks(ctx, params)
}

func (g *Gateway) countPicks(ctx context.Context, params url.Values) (int, error) {
	raw, err := g.client.Request(ctx, http.MethodGet, "picking/orders", params, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count picking orders: %w", err)
	}

	var picks []json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &picks); err != nil {
			return 0, &DecodeError{Endpoint: "picking/orders", Err: err}
		}
	}
	return len(picks), nil
}

// PauseSalesOrder pauses a sales order; the id must be the sales order id,
// not the fulfillment order id
func (g *Gateway) PauseSalesOrder(ctx context.Context, salesOrderID int64) error {
	endpoint := "sales/orders/" + strconv.FormatInt(salesOrderID, 10) + "/pause"
	if _, err := g.client.Request(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to pause sales order %d: %w", salesOrderID, err)
	}
	g.logger.Info("sales order paused", zap.Int64("sales_order_id", salesOrderID))
	return nil
}

// OrderInQueue re-checks whether a sales order's fulfillment is still in
// queue state
func (g *Gateway) OrderInQueue(ctx context.Context, salesOrderID int64) (bool, error) {
	params := url.Values{"sales_order_id": {strconv.FormatInt(salesOrderID, 10)}}
	raw, err := g.client.Request(ctx, http.MethodGet, "sales/orders/fulfillments", params, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check order %d: %w", salesOrderID, err)
	}

	var orders []picking.FulfillmentOrder
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &orders); err != nil {
			return false, &DecodeError{Endpoint: "sales/orders/fulfillments", Err: err}
		}
	}
	return len(orders) > 0 && orders[0].State == picking.QueueState, nil
}

// FindUser resolves a username to a WMS user, nil when unknown
func (g *Gateway) FindUser(ctx context.Context, username string) (*picking.User, error) {
	params := url.Values{"username": {username}}
	raw, err := g.client.Request(ctx, http.MethodGet, "iam/users", params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", username, err)
	}

	var users []picking.User
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &users); err != nil {
			return nil, &DecodeError{Endpoint: "iam/users", Err: err}
		}
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// Close releases the session
func (g *Gateway) Close() error {
	return g.client.Close()
}

type orderStream struct {
	pages   *Pages
	logger  *zap.Logger
	current *picking.FulfillmentOrder
}

func (s *orderStream) Next() bool {
	for s.pages.Next() {
		var order picking.FulfillmentOrder
		if err := json.Unmarshal(s.pages.Record(), &order); err != nil {
			s.logger.Error("skipping malformed fulfillment order", zap.Error(err))
			continue
		}
		s.current = &order
		return true
	}
	return false
}

func (s *orderStream) Order() *picking.FulfillmentOrder { return s.current }

func (s *orderStream) Err() error { return s.pages.Err() }

type stockStream struct {
	pages   *Pages
	logger  *zap.Logger
	current *picking.StockRecord
}

func (s *stockStream) Next() bool {
	for s.pages.Next() {
		var record picking.StockRecord
		if err := json.Unmarshal(s.pages.Record(), &record); err != nil {
			s.logger.Error("skipping malformed stock record", zap.Error(err))
			continue
		}
		s.current = &record
		return true
	}
	return false
}

func (s *stockStream) Stock() *picking.StockRecord { return s.current }

func (s *stockStream) Err() error { return s.pages.Err() }

type pickStream struct {
	pages   *Pages
	logger  *zap.Logger
	current *picking.PickSummary
}

func (s *pickStream) Next() bool {
	for s.pages.Next() {
		var pick picking.PickSummary
		if err := json.Unmarshal(s.pages.Record(), &pick); err != nil {
			s.logger.Error("skipping malformed picking order", zap.Error(err))
			continue
		}
		s.current = &pick
		return true
	}
	return false
}

func (s *pickStream) Pick() *picking.PickSummary { return s.current }

func (s *pickStream) Err() error { return s.pages.Err() }
