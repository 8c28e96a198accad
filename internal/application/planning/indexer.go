package planning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// ShelvesIndexer builds the run's view of the picking zones from one full
// stock scan: which products sit on which shelf, and how much of each product
// is available overall.
type ShelvesIndexer struct {
	wms    picking.WMS
	policy *picking.Policy
	logger *zap.Logger
}

// NewShelvesIndexer creates an indexer
func NewShelvesIndexer(wms picking.WMS, policy *picking.Policy, logger *zap.Logger) *ShelvesIndexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShelvesIndexer{wms: wms, policy: policy, logger: logger}
}

// Build scans all stock records. Rows outside the picking zones are ignored;
// rows with unusable location codes are logged and skipped.
func (i *ShelvesIndexer) Build(ctx context.Context) (picking.ShelvesIndex, picking.Availability, error) {
	index := make(picking.ShelvesIndex)
	availability := make(picking.Availability)

	stream := i.wms.Stocks(ctx)
	for stream.Next() {
		record := stream.Stock()
		if !i.policy.IsPickingZone(record.Location.ZoneID) {
			continue
		}
		shelf, err := record.Shelf()
		if err != nil {
			i.logger.Warn("skipping stock record",
				zap.Int64("product_id", record.ProductID),
				zap.Error(err))
			continue
		}
		index.Add(shelf, record.ProductID)
		availability.Add(record.ProductID, record.Quantity)
	}
	if err := stream.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to scan stocks: %w", err)
	}

	i.logger.Info("shelves index built",
		zap.Int("shelves", len(index)),
		zap.Int("products", len(availability)))
	return index, availability, nil
}
