package planning

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// CartPlanner groups cart-suitable orders of one trolley size into cart
// picks, shelf-driven first and randomly over the remainder. Capacity is
// governed by the non-priority pick backlog; priority carts are unbounded.
type CartPlanner struct {
	wms        picking.WMS
	policy     *picking.Policy
	classifier *picking.Classifier
	logger     *zap.Logger
}

// NewCartPlanner creates a planner; one instance serves the whole run
func NewCartPlanner(wms picking.WMS, policy *picking.Policy, classifier *picking.Classifier, logger *zap.Logger) *CartPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartPlanner{wms: wms, policy: policy, classifier: classifier, logger: logger}
}

// spaceUnlimited is the capacity of the priority band; the backlog threshold
// only throttles non-priority carts
const spaceUnlimited = math.MaxInt

// RunStage runs the cart flow for one bucket across every trolley size. XXL
// is palette freight and never carted. Once the backlog flag is set and it is
// not sweeping time the stage stops for the rest of the run.
func (p *CartPlanner) RunStage(ctx context.Context, rc *RunContext, orders []*picking.FulfillmentOrder, isPrio bool) error {
	for _, size := range p.policy.CartSizes {
		if size.Note == picking.NotePalette {
			continue
		}
		if rc.NoSpaceLeft && !rc.Sweeping {
			p.logger.Warn("no space left, skipping cart creation")
			return nil
		}
		if err := p.runSize(ctx, rc, size, orders, isPrio); err != nil {
			return err
		}
	}
	return nil
}

func (p *CartPlanner) runSize(ctx context.Context, rc *RunContext, size picking.CartSize, orders []*picking.FulfillmentOrder, isPrio bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	spaceLeft, err := p.checkSpace(ctx, rc, isPrio)
	if err != nil {
		return err
	}
	p.logger.Info("cart space",
		zap.String("size", size.Code),
		zap.Int("space_left", spaceLeft))

	sized := p.selectBySize(rc, orders, size)
	if len(sized) == 0 || (spaceLeft <= 0 && !rc.Sweeping) {
		return nil
	}

	builder := &cartBuilder{
		planner: p,
		rc:      rc,
		orders:  sized,
		isPrio:  isPrio,
		notes:   picking.NewNoteBuilder(p.policy, p.classifier, sized, isPrio, false, rc.Sweeping),
	}

	spaceLeft = builder.shelfPass(ctx, size, spaceLeft)
	p.logger.Info("shelf carts done",
		zap.String("size", size.Code),
		zap.Int("space_left", spaceLeft))

	if spaceLeft > 0 {
		remainder := rc.Unprocessed(sized)
		builder.randomPass(ctx, size, remainder, spaceLeft)
	}
	return nil
}

// checkSpace computes how many more carts the warehouse backlog tolerates.
// Going negative marks the sticky no-space flag on the run.
func (p *CartPlanner) checkSpace(ctx context.Context, rc *RunContext, isPrio bool) (int, error) {
	if isPrio {
		return spaceUnlimited, nil
	}

	backlog := 0
	for _, state := range p.policy.PickingStates {
		count, err := p.wms.CountPicking(ctx, state)
		if err != nil {
			return 0, err
		}
		backlog += count
	}
	p.logger.Info("picking backlog", zap.Int("count", backlog))

	spaceLeft := p.policy.NonPrioThreshold - backlog
	if spaceLeft < 0 {
		rc.NoSpaceLeft = true
	}
	return spaceLeft, nil
}

// selectBySize keeps unprocessed orders whose label share maps to the size
func (p *CartPlanner) selectBySize(rc *RunContext, orders []*picking.FulfillmentOrder, size picking.CartSize) []*picking.FulfillmentOrder {
	var sized []*picking.FulfillmentOrder
	for _, order := range orders {
		if rc.IsProcessed(order.SalesOrderID) {
			continue
		}
		class := p.classifier.Classify(order)
		if class.LabelShare != 0 && class.SizeNote == size.Note {
			sized = append(sized, order)
		}
	}
	return sized
}

// cartBuilder holds the per-size state the shelf and random passes share
type cartBuilder struct {
	planner *CartPlanner
	rc      *RunContext
	orders  []*picking.FulfillmentOrder
	isPrio  bool
	notes   *picking.NoteBuilder
}

// fullyAvailable reports whether stock covers every item of the order on top
// of what the cart under construction already claims. Products the snapshot
// has never seen get one live zone-summed lookup, cached into the snapshot.
func (b *cartBuilder) fullyAvailable(ctx context.Context, order *picking.FulfillmentOrder, inCart map[int64]int) bool {
	for _, item := range order.Items {
		if !b.rc.Stock.Has(item.ProductID) {
			level, err := b.planner.wms.StockLevel(ctx, item.ProductID)
			if err != nil {
				b.planner.logger.Error("failed to check stock",
					zap.Int64("product_id", item.ProductID), zap.Error(err))
				level = 0
			}
			b.rc.Stock.Set(item.ProductID, level)
		}
		if b.rc.Stock.Available(item.ProductID) < item.Quantity+inCart[item.ProductID] {
			b.planner.logger.Warn("order not available",
				zap.String("order_num", order.OrderNum))
			return false
		}
	}
	return true
}

// claim adds the order's quantities to the cart's running commitments
func (b *cartBuilder) claim(inCart map[int64]int, order *picking.FulfillmentOrder) {
	for _, item := range order.Items {
		inCart[item.ProductID] += item.Quantity
	}
}

// commit creates the cart pick when the cart lands between the effective
// minimum and the size maximum. During sweeping, priority carts go out from
// one order up; a shallow queue scales the minimum down instead.
func (b *cartBuilder) commit(ctx context.Context, size picking.CartSize, cart []int64, shelf string) bool {
	minimum := float64(size.Min)
	if b.rc.RunningDry {
		minimum *= b.planner.policy.RunningDryDenominator
	}
	if b.isPrio && b.rc.Sweeping {
		minimum = float64(b.planner.policy.SweepingMinOrders)
	}
	if float64(len(cart)) < minimum || len(cart) > size.Max {
		return false
	}

	note := b.notes.Build(picking.NoteParams{
		OrderIDs: cart,
		SizeNote: size.Note,
		Shelf:    shelf,
	})
	err := b.planner.wms.CreatePicking(ctx, &picking.PickingOrder{
		SalesOrders: cart,
		OrdersCount: 1,
		Cart:        true,
		Notes:       note,
	})
	if err != nil {
		b.planner.logger.Error("failed to create cart pick",
			zap.Int64s("sales_orders", cart), zap.Error(err))
		return false
	}
	return true
}

// consume settles a committed cart: orders leave the run, stock drops
func (b *cartBuilder) consume(cart []int64) {
	b.rc.MarkProcessed(cart...)
	for _, salesOrderID := range cart {
		for _, order := range b.orders {
			if order.SalesOrderID != salesOrderID {
				continue
			}
			for _, item := range order.Items {
				if b.rc.Stock.Has(item.ProductID) {
					b.rc.Stock.Consume(item.ProductID, item.Quantity)
				}
			}
		}
	}
}
