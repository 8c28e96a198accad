package planning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altruan/pulpobot/internal/application/planning"
	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/test/helpers"
)

func stockRow(productID int64, quantity int, code string, zoneID int64) *picking.StockRecord {
	return &picking.StockRecord{
		ProductID: productID,
		Quantity:  quantity,
		Location:  picking.StockLocation{Code: code, ZoneID: zoneID},
	}
}

func TestShelvesIndexer_Build_AggregatesPickingZones(t *testing.T) {
	// Arrange: two rows of the same product on different shelves, one row in
	// a zone that does not count
	wms := helpers.NewFakeWMS()
	wms.StockRecords = []*picking.StockRecord{
		stockRow(100, 5, "A01-01-1", 1419),
		stockRow(100, 7, "A01-02-1", 1423),
		stockRow(200, 3, "B02-01-2", 1419),
		stockRow(300, 99, "C03-01-1", 9999),
	}
	indexer := planning.NewShelvesIndexer(wms, defaultPolicy(), nil)

	// Act
	shelves, stock, err := indexer.Build(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 12, stock.Available(100))
	assert.Equal(t, 3, stock.Available(200))
	assert.False(t, stock.Has(300))
	assert.True(t, shelves.Contains("A01-01", 100))
	assert.True(t, shelves.Contains("A01-02", 100))
	assert.True(t, shelves.Contains("B02-01", 200))
	assert.ElementsMatch(t, []string{"A01-01", "A01-02"}, shelves.ShelvesWithProduct(100))
}

func TestShelvesIndexer_Build_SkipsUnusableLocationCodes(t *testing.T) {
	wms := helpers.NewFakeWMS()
	wms.StockRecords = []*picking.StockRecord{
		stockRow(100, 5, "", 1419),
		stockRow(100, 4, "A01-01-1", 1419),
	}
	indexer := planning.NewShelvesIndexer(wms, defaultPolicy(), nil)

	shelves, stock, err := indexer.Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, stock.Available(100))
	assert.Len(t, shelves.ShelvesWithProduct(100), 1)
}

func TestShelvesIndexer_Build_ShortCodesNameTheShelfWhole(t *testing.T) {
	wms := helpers.NewFakeWMS()
	wms.StockRecords = []*picking.StockRecord{
		stockRow(100, 2, "WA-1", 1417),
	}
	indexer := planning.NewShelvesIndexer(wms, defaultPolicy(), nil)

	shelves, _, err := indexer.Build(context.Background())

	require.NoError(t, err)
	assert.True(t, shelves.Contains("WA-1", 100))
}

type failingStockWMS struct {
	*helpers.FakeWMS
}

func (w *failingStockWMS) Stocks(ctx context.Context) picking.StockStream {
	return &failingStockStream{}
}

type failingStockStream struct{}

func (s *failingStockStream) Next() bool                  { return false }
func (s *failingStockStream) Stock() *picking.StockRecord { return nil }
func (s *failingStockStream) Err() error                  { return errors.New("stock scan broke") }

func TestShelvesIndexer_Build_SurfacesStreamErrors(t *testing.T) {
	wms := &failingStockWMS{FakeWMS: helpers.NewFakeWMS()}
	indexer := planning.NewShelvesIndexer(wms, defaultPolicy(), nil)

	_, _, err := indexer.Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan stocks")
}
