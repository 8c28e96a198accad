package planning

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// palletUnbounded caps nothing; it stands in when no pallet capacity can be
// determined so the product still batches into one pick
const palletUnbounded = math.MaxInt

// BatchPlanner groups single-item orders of the same product into batch
// picks. One batch covers one product; oversized totals split across
// pallet-capacity bounded picks; products under a special SKU rule ship
// qualifying orders as individual palettes first.
type BatchPlanner struct {
	wms        picking.WMS
	articles   picking.Articles
	notifier   picking.Notifier
	policy     *picking.Policy
	classifier *picking.Classifier
	skus       picking.SkusToBatch
	logger     *zap.Logger

	// pallet capacity per product, resolved at most once per run
	palletCache map[int64]int
}

// NewBatchPlanner creates a planner; the same instance serves both priority
// bands so pallet lookups are shared.
func NewBatchPlanner(wms picking.WMS, articles picking.Articles, notifier picking.Notifier, policy *picking.Policy, classifier *picking.Classifier, skus picking.SkusToBatch, logger *zap.Logger) *BatchPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchPlanner{
		wms:         wms,
		articles:    articles,
		notifier:    notifier,
		policy:      policy,
		classifier:  classifier,
		skus:        skus,
		logger:      logger,
		palletCache: make(map[int64]int),
	}
}

// candidate is one single-item order competing for a batch
type candidate struct {
	salesOrderID int64
	quantity     int
}

// batchGroup is all batchable demand for one product
type batchGroup struct {
	productID  int64
	name       string
	seni       bool
	candidates []candidate
}

// Run batches one priority band. Orders the band cannot batch stay
// unprocessed for the cart planners.
func (p *BatchPlanner) Run(ctx context.Context, rc *RunContext, orders []*picking.FulfillmentOrder, isPrio bool) error {
	notes := picking.NewNoteBuilder(p.policy, p.classifier, orders, isPrio, true, false)

	groups := p.findGroups(rc, orders)
	p.logger.Info("products to batch", zap.Int("count", len(groups)))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.batchProduct(ctx, rc, notes, group)
	}
	return nil
}

// findGroups counts single-item orders per product and keeps products whose
// order count reaches the batch minimum, in product id order.
func (p *BatchPlanner) findGroups(rc *RunContext, orders []*picking.FulfillmentOrder) []batchGroup {
	byProduct := make(map[int64]*batchGroup)
	for _, order := range orders {
		if !order.IsSingleItem() || rc.IsProcessed(order.SalesOrderID) {
			continue
		}
		item := order.Items[0]
		group, ok := byProduct[item.ProductID]
		if !ok {
			group = &batchGroup{
				productID: item.ProductID,
				name:      item.Product.Name,
				seni:      p.isSeniProduct(&item.Product),
			}
			byProduct[item.ProductID] = group
		}
		group.candidates = append(group.candidates, candidate{
			salesOrderID: order.SalesOrderID,
			quantity:     item.Quantity,
		})
	}

	groups := make([]batchGroup, 0, len(byProduct))
	for _, group := range byProduct {
		if len(group.candidates) < p.minBatchSize(rc, group.seni) {
			continue
		}
		// Largest orders first so palettes and splits fill greedily
		sort.SliceStable(group.candidates, func(i, j int) bool {
			if group.candidates[i].quantity != group.candidates[j].quantity {
				return group.candidates[i].quantity > group.candidates[j].quantity
			}
			return group.candidates[i].salesOrderID < group.candidates[j].salesOrderID
		})
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].productID < groups[j].productID })
	return groups
}

func (p *BatchPlanner) isSeniProduct(product *picking.Product) bool {
	for _, category := range product.ProductCategories {
		if category.ID == p.policy.SeniManufacturerID {
			return true
		}
	}
	return strings.Contains(product.Name, p.policy.SeniNameIdentifier)
}

// minBatchSize is the per-product order-count floor, scaled down when the
// queue is running dry
func (p *BatchPlanner) minBatchSize(rc *RunContext, seni bool) int {
	size := p.policy.MinBatchSize
	if seni {
		size = p.policy.MinBatchSizeSeni
	}
	if rc.RunningDry {
		return int(math.Round(float64(size) * p.policy.RunningDryDenominator))
	}
	return size
}

// batchProduct runs the batch flow for one product
func (p *BatchPlanner) batchProduct(ctx context.Context, rc *RunContext, notes *picking.NoteBuilder, group batchGroup) {
	maxPerPallet := p.maxUnitsPerPallet(ctx, group.productID, group.name)
	minBatch := p.minBatchSize(rc, group.seni)

	total := 0
	for _, cand := range group.candidates {
		total += cand.quantity
	}
	stock := rc.Stock.Available(group.productID)
	p.logger.Info("batching product",
		zap.Int64("product_id", group.productID),
		zap.Int("total_quantity", total),
		zap.Int("stock", stock),
		zap.Int("max_per_pallet", maxPerPallet))

	if total > stock {
		p.logger.Warn("stock does not cover demand",
			zap.Int64("product_id", group.productID),
			zap.Int("stock", stock))
		if !p.enoughOrdersFitUnderStock(stock, group.candidates, minBatch) {
			p.logger.Warn("not enough orders fit under stock, skipping product",
				zap.Int64("product_id", group.productID))
			return
		}
		total = stock
	}

	if p.skus.HasProduct(group.productID) {
		remaining := p.palettePicks(ctx, rc, notes, group, total)
		left := p.unprocessed(rc, group.candidates)
		if len(left) > 0 && remaining > minBatch {
			p.regularBatch(ctx, rc, notes, group, left, remaining, maxPerPallet)
		}
		return
	}
	p.regularBatch(ctx, rc, notes, group, group.candidates, total, maxPerPallet)
}

// enoughOrdersFitUnderStock checks whether, walking the candidates in order,
// strictly more than minBatch orders fit under the stock limit
func (p *BatchPlanner) enoughOrdersFitUnderStock(stock int, candidates []candidate, minBatch int) bool {
	fitted := 0
	count := 0
	for _, cand := range candidates {
		if fitted+cand.quantity < stock {
			fitted += cand.quantity
			count++
		}
	}
	return count > minBatch
}

// palettePicks ships qualifying special-SKU orders as individual palettes.
// Returns the quantity still available for regular batching.
func (p *BatchPlanner) palettePicks(ctx context.Context, rc *RunContext, notes *picking.NoteBuilder, group batchGroup, remaining int) int {
	separateFrom := p.skus.SeparationValue(group.productID)
	for _, cand := range group.candidates {
		if remaining <= 0 {
			break
		}
		if rc.IsProcessed(cand.salesOrderID) ||
			cand.quantity < separateFrom || cand.quantity > remaining {
			continue
		}

		note := notes.Build(picking.NoteParams{
			OrderIDs:        []int64{cand.salesOrderID},
			BatchedQuantity: cand.quantity,
			BatchedProduct:  group.name,
		})
		if !p.createBatch(ctx, []int64{cand.salesOrderID}, note) {
			continue
		}
		rc.MarkProcessed(cand.salesOrderID)
		rc.Stock.Consume(group.productID, cand.quantity)
		remaining -= cand.quantity
	}
	return remaining
}

// regularBatch emits one pick when everything fits on a pallet, otherwise
// splits the demand across pallet-bounded batches
func (p *BatchPlanner) regularBatch(ctx context.Context, rc *RunContext, notes *picking.NoteBuilder, group batchGroup, candidates []candidate, total, maxPerPallet int) {
	candidates = p.unprocessed(rc, candidates)
	if len(candidates) == 0 {
		return
	}

	if total <= maxPerPallet && len(candidates) <= p.policy.MaxBatchSize {
		ids := make([]int64, len(candidates))
		for i, cand := range candidates {
			ids[i] = cand.salesOrderID
		}
		note := notes.Build(picking.NoteParams{
			OrderIDs:        ids,
			BatchedQuantity: total,
			BatchedProduct:  group.name,
		})
		if p.createBatch(ctx, ids, note) {
			rc.MarkProcessed(ids...)
			rc.Stock.Consume(group.productID, total)
		}
		return
	}

	p.logger.Info("splitting batches", zap.Int64("product_id", group.productID))
	p.splitBatches(ctx, rc, notes, group, candidates, total, maxPerPallet)
}

// splitBatches fills pallet-bounded batches greedily down the descending
// candidate list
func (p *BatchPlanner) splitBatches(ctx context.Context, rc *RunContext, notes *picking.NoteBuilder, group batchGroup, candidates []candidate, total, maxPerPallet int) {
	numBatches := total / maxPerPallet
	if byOrders := len(candidates) / p.policy.MaxBatchSize; byOrders < numBatches {
		numBatches = byOrders
	}

	for batch := 0; batch < numBatches; batch++ {
		batchedQuantity := 0
		var ids []int64
		for _, cand := range candidates {
			if rc.IsProcessed(cand.salesOrderID) {
				continue
			}
			if batchedQuantity+cand.quantity > maxPerPallet {
				break
			}
			if len(ids) >= p.policy.MaxBatchSize {
				break
			}
			batchedQuantity += cand.quantity
			ids = append(ids, cand.salesOrderID)
		}
		if len(ids) == 0 {
			continue
		}

		note := notes.Build(picking.NoteParams{
			OrderIDs:        ids,
			BatchedQuantity: batchedQuantity,
			BatchedProduct:  group.name,
		})
		if p.createBatch(ctx, ids, note) {
			rc.MarkProcessed(ids...)
			rc.Stock.Consume(group.productID, batchedQuantity)
		}
	}
}

func (p *BatchPlanner) unprocessed(rc *RunContext, candidates []candidate) []candidate {
	kept := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		if !rc.IsProcessed(cand.salesOrderID) {
			kept = append(kept, cand)
		}
	}
	return kept
}

func (p *BatchPlanner) createBatch(ctx context.Context, ids []int64, note string) bool {
	err := p.wms.CreatePicking(ctx, &picking.PickingOrder{
		SalesOrders: ids,
		OrdersCount: 1,
		Cart:        false,
		Notes:       note,
	})
	if err != nil {
		p.logger.Error("failed to create batch pick",
			zap.Int64s("sales_orders", ids),
			zap.Error(err))
		return false
	}
	return true
}

// maxUnitsPerPallet resolves the pallet capacity of a product: the WMS field
// when filled, the article master otherwise (written back on success). With
// neither available the product batches unbounded and the operators get an
// alert.
func (p *BatchPlanner) maxUnitsPerPallet(ctx context.Context, productID int64, name string) int {
	if cached, ok := p.palletCache[productID]; ok {
		return cached
	}
	units := p.resolvePallet(ctx, productID, name)
	p.palletCache[productID] = units
	return units
}

func (p *BatchPlanner) resolvePallet(ctx context.Context, productID int64, name string) int {
	product, err := p.wms.Product(ctx, productID)
	if err != nil {
		p.logger.Error("failed to fetch product",
			zap.Int64("product_id", productID), zap.Error(err))
		return palletUnbounded
	}
	if product.UnitsPerPallet > 0 {
		return product.UnitsPerPallet
	}

	units, found, err := p.articles.UnitsPerPallet(ctx, product)
	if err != nil {
		p.logger.Error("failed to consult article master",
			zap.Int64("product_id", productID), zap.Error(err))
	}
	if found && units > 0 {
		update := picking.ProductUpdate{UnitsPerPallet: units, Barcodes: product.Barcodes}
		if err := p.wms.UpdateProduct(ctx, productID, update); err != nil {
			p.logger.Error("failed to write back pallet capacity",
				zap.Int64("product_id", productID), zap.Error(err))
		}
		return units
	}

	p.logger.Warn("product has no pallet information", zap.String("product", name))
	message := fmt.Sprintf("Product %s (sku %s) has no pallet information. Please maintain the packaging data.", product.Name, product.SKU)
	if err := p.notifier.Notify(ctx, message); err != nil {
		p.logger.Error("failed to send pallet alert", zap.Error(err))
	}
	return palletUnbounded
}
