package planning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// Buckets are the six separation outputs. Batch buckets hold every suitable
// order of their band; cart buckets hold only cart-suitable ones, split by
// Seni content. Priority orders never mix with non-priority ones.
type Buckets struct {
	PrioBatch     []*picking.FulfillmentOrder
	PrioSeniCarts []*picking.FulfillmentOrder
	PrioCarts     []*picking.FulfillmentOrder

	Batch     []*picking.FulfillmentOrder
	SeniCarts []*picking.FulfillmentOrder
	Carts     []*picking.FulfillmentOrder
}

// Separator walks the order queue once, creates the single picks that bypass
// batching and carts (Partnerkunde, explicit priority, palette freight) and
// sorts everything else into the planner buckets.
type Separator struct {
	wms        picking.WMS
	policy     *picking.Policy
	classifier *picking.Classifier
	roster     picking.Roster
	logger     *zap.Logger

	partnerkundeLoad picking.PickDistribution
	paletteLoad      picking.PickDistribution
}

// NewSeparator creates a separator and fetches the outstanding pick counts of
// every rostered picker, once per run
func NewSeparator(ctx context.Context, wms picking.WMS, policy *picking.Policy, classifier *picking.Classifier, roster picking.Roster, logger *zap.Logger) (*Separator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Separator{
		wms:        wms,
		policy:     policy,
		classifier: classifier,
		roster:     roster,
		logger:     logger,
	}

	var err error
	s.partnerkundeLoad, err = s.loadDistribution(ctx, roster.Pickers(picking.RosterPartnerkunde))
	if err != nil {
		return nil, err
	}
	s.paletteLoad, err = s.loadDistribution(ctx, roster.Pickers(picking.RosterPalette))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Separator) loadDistribution(ctx context.Context, pickers []int64) (picking.PickDistribution, error) {
	distribution := make(picking.PickDistribution, len(pickers))
	for _, userID := range pickers {
		count, err := s.wms.CountPicksOwnedBy(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pick distribution: %w", err)
		}
		distribution[userID] = count
	}
	return distribution, nil
}

// Run separates the queue. Orders whose stock does not cover every item are
// left on the queue for a later run; every counted order feeds the
// running-dry calculation through rc.OrdersCount.
func (s *Separator) Run(ctx context.Context, rc *RunContext) (*Buckets, error) {
	buckets := &Buckets{}

	stream := s.wms.QueuedOrders(ctx)
	for stream.Next() {
		order := stream.Order()
		if !s.classifier.SuitableForPicking(order) {
			continue
		}
		if !s.coveredByStock(rc, order) {
			continue
		}
		rc.OrdersCount++

		class := s.classifier.Classify(order)
		if s.singlePick(ctx, order, class) {
			continue
		}

		cartSuitable := s.classifier.SuitableForCart(order, rc.Sweeping)
		if class.Prio {
			buckets.PrioBatch = append(buckets.PrioBatch, order)
			if cartSuitable {
				if class.Seni {
					buckets.PrioSeniCarts = append(buckets.PrioSeniCarts, order)
				} else {
					buckets.PrioCarts = append(buckets.PrioCarts, order)
				}
			}
		} else {
			buckets.Batch = append(buckets.Batch, order)
			if cartSuitable {
				if class.Seni {
					buckets.SeniCarts = append(buckets.SeniCarts, order)
				} else {
					buckets.Carts = append(buckets.Carts, order)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan order queue: %w", err)
	}

	s.logger.Info("orders separated",
		zap.Int("orders_count", rc.OrdersCount),
		zap.Int("prio_batch", len(buckets.PrioBatch)),
		zap.Int("prio_seni_carts", len(buckets.PrioSeniCarts)),
		zap.Int("prio_carts", len(buckets.PrioCarts)),
		zap.Int("batch", len(buckets.Batch)),
		zap.Int("seni_carts", len(buckets.SeniCarts)),
		zap.Int("carts", len(buckets.Carts)))
	return buckets, nil
}

// coveredByStock reports whether the picking zones hold every item of the
// order in full
func (s *Separator) coveredByStock(rc *RunContext, order *picking.FulfillmentOrder) bool {
	for _, item := range order.Items {
		if !rc.Stock.Has(item.ProductID) {
			return false
		}
		if rc.Stock.Available(item.ProductID) < item.Quantity {
			return false
		}
	}
	return true
}

// singlePick creates a pick for orders that bypass the planners entirely.
// It reports whether the order was handled; creation failures are logged and
// still count as handled so a broken order cannot flood the planner buckets.
func (s *Separator) singlePick(ctx context.Context, order *picking.FulfillmentOrder, class picking.Classification) bool {
	switch {
	case s.policy.IsPartnerkundeChannel(order.Channel):
		s.logger.Info("partnerkunde order", zap.Int64("sales_order_id", order.SalesOrderID))
		s.assignedPick(ctx, order, class, s.partnerkundeLoad, "")
		return true

	case order.Priority > s.policy.NormalPriority:
		s.logger.Info("elevated priority order",
			zap.Int64("sales_order_id", order.SalesOrderID),
			zap.Int("priority", order.Priority))
		notes := picking.NewNoteBuilder(s.policy, s.classifier, []*picking.FulfillmentOrder{order}, false, false, false)
		note := notes.Build(picking.NoteParams{
			OrderIDs:    []int64{order.SalesOrderID},
			SingleOrder: order,
		})
		s.createSingle(ctx, order, note, nil)
		return true

	case class.LabelShare >= picking.PaletteLabelShare || s.policy.IsSpecialShipping(order.ShippingMethodID):
		s.logger.Info("palette order", zap.Int64("sales_order_id", order.SalesOrderID))
		s.assignedPick(ctx, order, class, s.paletteLoad, picking.NotePalette)
		return true
	}
	return false
}

// assignedPick creates a single pick assigned to the least-loaded rostered
// picker. An empty roster leaves the pick unassigned.
func (s *Separator) assignedPick(ctx context.Context, order *picking.FulfillmentOrder, class picking.Classification, load picking.PickDistribution, sizeNote string) {
	notes := picking.NewNoteBuilder(s.policy, s.classifier, []*picking.FulfillmentOrder{order}, class.Prio, false, false)
	note := notes.Build(picking.NoteParams{
		OrderIDs:    []int64{order.SalesOrderID},
		SingleOrder: order,
		SizeNote:    sizeNote,
	})

	pickers := picking.ChoosePicker(load)
	if s.createSingle(ctx, order, note, pickers) && len(pickers) == 1 {
		load[pickers[0]]++
	}
}

func (s *Separator) createSingle(ctx context.Context, order *picking.FulfillmentOrder, note string, pickers []int64) bool {
	err := s.wms.CreatePicking(ctx, &picking.PickingOrder{
		SalesOrders: []int64{order.SalesOrderID},
		OrdersCount: 1,
		Pickers:     pickers,
		Cart:        false,
		Notes:       note,
	})
	if err != nil {
		s.logger.Error("failed to create single pick",
			zap.Int64("sales_order_id", order.SalesOrderID),
			zap.Error(err))
		return false
	}
	return true
}
