package pulpo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altruan/pulpobot/internal/adapters/pulpo"
	"github.com/altruan/pulpobot/internal/domain/picking"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *pulpo.Gateway {
	t.Helper()
	client, _ := newTestClient(t, authHandler(handler))
	policy := picking.DefaultPolicy()
	return pulpo.NewGateway(client, &policy, nil)
}

func TestGateway_QueuedOrders_DecodesAndSkipsMalformedRecords(t *testing.T) {
	// Arrange: the second record is not an order object
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "queue", r.URL.Query().Get("state"))
		w.Write([]byte(`{"total_results": 3, "orders": [
			{"id": 1, "sales_order_id": 11, "state": "queue"},
			"garbage",
			{"id": 2, "sales_order_id": 22, "state": "queue"}
		]}`))
	})

	// Act
	stream := gateway.QueuedOrders(context.Background())
	var ids []int64
	for stream.Next() {
		ids = append(ids, stream.Order().ID)
	}

	// Assert
	assert.NoError(t, stream.Err())
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestGateway_StockLevel_SumsPickingZonesOnly(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("product_id"))
		w.Write([]byte(`{"total_results": 3, "stocks": [
			{"product_id": 42, "quantity": 5, "location": {"code": "A01-01", "zone_id": 1419}},
			{"product_id": 42, "quantity": 7, "location": {"code": "B02-01", "zone_id": 1423}},
			{"product_id": 42, "quantity": 90, "location": {"code": "HL-001", "zone_id": 9999}}
		]}`))
	})

	level, err := gateway.StockLevel(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 12, level)
}

func TestGateway_CreatePicking_SingleOrderIsNeverACart(t *testing.T) {
	// Arrange
	var got picking.PickingOrder
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"created": true}`))
	})
	pick := &picking.PickingOrder{
		SalesOrders: []int64{77},
		OrdersCount: 1,
		Cart:        true,
		Notes:       "Bot: Gr. S",
	}

	// Act
	err := gateway.CreatePicking(context.Background(), pick)

	// Assert: the wire payload was demoted, the caller's struct untouched
	require.NoError(t, err)
	assert.False(t, got.Cart)
	assert.True(t, pick.Cart)
	assert.Equal(t, []int64{77}, got.SalesOrders)
	assert.NotNil(t, got.Pickers)
}

func TestGateway_CreatePicking_CartKeepsCartFlag(t *testing.T) {
	var got picking.PickingOrder
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"created": true}`))
	})

	err := gateway.CreatePicking(context.Background(), &picking.PickingOrder{
		SalesOrders: []int64{1, 2, 3},
		OrdersCount: 3,
		Pickers:     []int64{15},
		Cart:        true,
		Notes:       "Bot: Gr. M1",
	})

	require.NoError(t, err)
	assert.True(t, got.Cart)
	assert.Equal(t, []int64{15}, got.Pickers)
}

func TestGateway_CreateBulkPicking_WrapsPicksInOnePayload(t *testing.T) {
	var got map[string][]picking.PickingOrder
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/picking/orders/bulk", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"created": true}`))
	})

	err := gateway.CreateBulkPicking(context.Background(), []picking.PickingOrder{
		{SalesOrders: []int64{1}, OrdersCount: 1},
		{SalesOrders: []int64{2}, OrdersCount: 1},
	})

	require.NoError(t, err)
	require.Len(t, got["picking_orders"], 2)
	assert.Equal(t, []int64{2}, got["picking_orders"][1].SalesOrders)
}

func TestGateway_CountPicking_CountsOnePageDeep(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "queue", r.URL.Query().Get("state"))
		assert.Equal(t, "600", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"total_results": 2, "picking_orders": [{"id": 1}, {"id": 2}]}`))
	})

	count, err := gateway.CountPicking(context.Background(), picking.QueueState)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGateway_CountPicksOwnedBy(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "15", r.URL.Query().Get("owner_id"))
		w.Write([]byte(`{"total_results": 1, "picking_orders": [{"id": 9}]}`))
	})

	count, err := gateway.CountPicksOwnedBy(context.Background(), 15)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGateway_FindUser(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") == "anna" {
			w.Write([]byte(`{"total_results": 1, "users": [{"id": 15, "username": "anna"}]}`))
			return
		}
		w.Write([]byte(`{"total_results": 0, "users": []}`))
	})

	anna, err := gateway.FindUser(context.Background(), "anna")
	require.NoError(t, err)
	require.NotNil(t, anna)
	assert.Equal(t, int64(15), anna.ID)

	nobody, err := gateway.FindUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, nobody)
}

func TestGateway_OrderInQueue(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("sales_order_id") {
		case "11":
			w.Write([]byte(`{"total_results": 1, "orders": [{"id": 1, "state": "queue"}]}`))
		case "22":
			w.Write([]byte(`{"total_results": 1, "orders": [{"id": 2, "state": "taken"}]}`))
		default:
			w.Write([]byte(`{"total_results": 0, "orders": []}`))
		}
	})

	queued, err := gateway.OrderInQueue(context.Background(), 11)
	require.NoError(t, err)
	assert.True(t, queued)

	taken, err := gateway.OrderInQueue(context.Background(), 22)
	require.NoError(t, err)
	assert.False(t, taken)

	missing, err := gateway.OrderInQueue(context.Background(), 33)
	require.NoError(t, err)
	assert.False(t, missing)
}

func TestGateway_PauseSalesOrder_SurfacesBusinessErrors(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/orders/11/pause", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"message": "order already paused"}`))
	})

	err := gateway.PauseSalesOrder(context.Background(), 11)

	var businessErr *pulpo.BusinessError
	assert.ErrorAs(t, err, &businessErr)
}

func TestGateway_UpdateProduct_SendsPalletCapacity(t *testing.T) {
	var got picking.ProductUpdate
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory/products/42", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id": 42}`))
	})

	err := gateway.UpdateProduct(context.Background(), 42, picking.ProductUpdate{
		UnitsPerPallet: 96,
		Barcodes:       []string{"4026600"},
	})

	require.NoError(t, err)
	assert.Equal(t, 96, got.UnitsPerPallet)
	assert.Equal(t, []string{"4026600"}, got.Barcodes)
}
