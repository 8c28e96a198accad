package planning

import (
	"context"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// RosterRefresher rebuilds the picker roster from the maintained spreadsheet
// lists and persists it for the following runs. Any failure leaves the
// previously loaded roster in use.
type RosterRefresher struct {
	wms    picking.WMS
	source picking.RosterSource
	store  picking.RosterStore
	logger *zap.Logger
}

// NewRosterRefresher creates a refresher
func NewRosterRefresher(wms picking.WMS, source picking.RosterSource, store picking.RosterStore, logger *zap.Logger) *RosterRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterRefresher{wms: wms, source: source, store: store, logger: logger}
}

// Refresh resolves the spreadsheet usernames to WMS user ids, replaces each
// roster category wholesale and uploads the result. Unknown usernames are
// logged and skipped.
func (r *RosterRefresher) Refresh(ctx context.Context, current picking.Roster) picking.Roster {
	usernames, err := r.source.Usernames(ctx)
	if err != nil {
		r.logger.Error("failed to read picker spreadsheet", zap.Error(err))
		return current
	}

	refreshed := make(picking.Roster, len(usernames))
	for category, names := range usernames {
		ids := make([]int64, 0, len(names))
		for _, name := range names {
			user, err := r.wms.FindUser(ctx, name)
			if err != nil {
				r.logger.Error("failed to resolve picker",
					zap.String("username", name), zap.Error(err))
				continue
			}
			if user == nil {
				r.logger.Warn("picker not found in wms", zap.String("username", name))
				continue
			}
			ids = append(ids, user.ID)
		}
		refreshed[category] = ids
	}

	if err := r.store.Save(ctx, refreshed); err != nil {
		r.logger.Error("failed to persist refreshed roster", zap.Error(err))
	}
	r.logger.Info("picker roster refreshed",
		zap.Int("categories", len(refreshed)))
	return refreshed
}
