package planning

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/internal/domain/shared"
)

// RunResult is the invocation outcome; partial failures are logged, not
// surfaced, so the scheduler never retries a half-finished run
type RunResult struct {
	Status string `json:"status"`
}

// StatusFinished is the only terminal status a run reports
const StatusFinished = "finished"

// Orchestrator drives one planning run end to end: maintenance,
// preprocessing, index build, separation, then the batch and cart planners
// per priority band. It owns the WMS session and closes it exactly once.
type Orchestrator struct {
	wms      picking.WMS
	articles picking.Articles
	store    picking.RosterStore
	source   picking.RosterSource
	notifier picking.Notifier

	policy   *picking.Policy
	skus     picking.SkusToBatch
	clock    shared.Clock
	location *time.Location
	logger   *zap.Logger
}

// NewOrchestrator wires a run. store and source may be nil; the run then
// falls back to the default roster and skips the roster refresh.
func NewOrchestrator(
	wms picking.WMS,
	articles picking.Articles,
	store picking.RosterStore,
	source picking.RosterSource,
	notifier picking.Notifier,
	policy *picking.Policy,
	skus picking.SkusToBatch,
	clock shared.Clock,
	location *time.Location,
	logger *zap.Logger,
) *Orchestrator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		wms:      wms,
		articles: articles,
		store:    store,
		source:   source,
		notifier: notifier,
		policy:   policy,
		skus:     skus,
		clock:    clock,
		location: location,
		logger:   logger,
	}
}

// Run executes one planning invocation. Only context cancellation aborts the
// run; everything else is logged and the run finishes.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	now := o.clock.Now().In(o.location)
	sweeping := o.policy.IsSweepingHour(now.Hour())

	rc := NewRunContext(now, sweeping)
	logger := o.logger.With(zap.String("run_id", rc.ID))
	logger.Info("run started",
		zap.Time("now", now),
		zap.Bool("sweeping", sweeping))

	defer func() {
		if err := o.wms.Close(); err != nil {
			logger.Error("failed to close wms session", zap.Error(err))
		}
	}()

	roster := o.loadRoster(ctx, logger)

	roster = o.maintenance(ctx, rc, roster, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.preprocess(ctx, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexer := NewShelvesIndexer(o.wms, o.policy, logger)
	shelves, stock, err := indexer.Build(ctx)
	if err != nil {
		logger.Error("failed to build shelves index", zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return &RunResult{Status: StatusFinished}, nil
	}
	rc.Shelves = shelves
	rc.Stock = stock

	classifier := picking.NewClassifier(o.policy, now, o.skus)
	separator, err := NewSeparator(ctx, o.wms, o.policy, classifier, roster, logger)
	if err != nil {
		logger.Error("failed to prepare separation", zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return &RunResult{Status: StatusFinished}, nil
	}
	buckets, err := separator.Run(ctx, rc)
	if err != nil {
		logger.Error("failed to separate orders", zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return &RunResult{Status: StatusFinished}, nil
	}
	rc.RunningDry = rc.OrdersCount < o.policy.RunningDryNumOrders
	logger.Info("queue depth", zap.Int("orders", rc.OrdersCount),
		zap.Bool("running_dry", rc.RunningDry))

	batches := NewBatchPlanner(o.wms, o.articles, o.notifier, o.policy, classifier, o.skus, logger)
	carts := NewCartPlanner(o.wms, o.policy, classifier, logger)

	logger.Info("processing priority orders")
	if err := o.band(ctx, rc, batches, carts, true, buckets.PrioBatch, buckets.PrioSeniCarts, buckets.PrioCarts); err != nil {
		return nil, err
	}
	logger.Info("processing non-priority orders")
	if err := o.band(ctx, rc, batches, carts, false, buckets.Batch, buckets.SeniCarts, buckets.Carts); err != nil {
		return nil, err
	}

	logger.Info("run finished")
	return &RunResult{Status: StatusFinished}, nil
}

// band runs the planners of one priority band: batches first, then Seni
// carts, then the rest
func (o *Orchestrator) band(ctx context.Context, rc *RunContext, batches *BatchPlanner, carts *CartPlanner, isPrio bool, batchBucket, seniBucket, cartBucket []*picking.FulfillmentOrder) error {
	if err := batches.Run(ctx, rc, batchBucket, isPrio); err != nil {
		return err
	}
	if err := carts.RunStage(ctx, rc, seniBucket, isPrio); err != nil {
		return err
	}
	return carts.RunStage(ctx, rc, cartBucket, isPrio)
}

// loadRoster fetches the persisted roster, degrading to the default on any
// failure
func (o *Orchestrator) loadRoster(ctx context.Context, logger *zap.Logger) picking.Roster {
	if o.store == nil {
		logger.Warn("no roster store configured, using default roster")
		return picking.DefaultRoster()
	}
	roster, err := o.store.Load(ctx)
	if err != nil {
		logger.Error("failed to load roster, using default", zap.Error(err))
		return picking.DefaultRoster()
	}
	return roster
}

// maintenance runs the scheduled housekeeping of the current hour
func (o *Orchestrator) maintenance(ctx context.Context, rc *RunContext, roster picking.Roster, logger *zap.Logger) picking.Roster {
	hour := rc.Now.Hour()
	if o.policy.IsNightCleaningHour(hour) {
		o.cleaner(ctx, logger)
	}
	if o.policy.IsPickersUpdateHour(hour) && o.source != nil && o.store != nil {
		refresher := NewRosterRefresher(o.wms, o.source, o.store, logger)
		roster = refresher.Refresh(ctx, roster)
	}
	return roster
}

// cleaner deletes queued picks nobody has taken yet, so the day starts from
// a clean slate
func (o *Orchestrator) cleaner(ctx context.Context, logger *zap.Logger) {
	stream := o.wms.QueuedPicks(ctx)
	for stream.Next() {
		pick := stream.Pick()
		if pick.Owner != nil {
			continue
		}
		if err := o.wms.DeletePicking(ctx, pick.ID); err != nil {
			logger.Error("failed to delete picking order",
				zap.Int64("picking_order_id", pick.ID), zap.Error(err))
			continue
		}
		logger.Info("picking order deleted", zap.Int64("picking_order_id", pick.ID))
	}
	if err := stream.Err(); err != nil {
		logger.Error("cleaner scan failed", zap.Error(err))
	}
	logger.Info("cleaner finished")
}

// preprocess pauses delivery-service orders before any pick exists for them
func (o *Orchestrator) preprocess(ctx context.Context, logger *zap.Logger) {
	stream := o.wms.QueuedOrders(ctx)
	for stream.Next() {
		order := stream.Order()
		if order.ShippingMethodID != o.policy.AltruanLieferdienst {
			continue
		}
		if err := o.wms.PauseSalesOrder(ctx, order.SalesOrderID); err != nil {
			logger.Error("failed to pause sales order",
				zap.Int64("sales_order_id", order.SalesOrderID), zap.Error(err))
		}
	}
	if err := stream.Err(); err != nil {
		logger.Error("preprocessing scan failed", zap.Error(err))
	}
}
