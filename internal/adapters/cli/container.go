package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/adapters/alerting"
	"github.com/altruan/pulpobot/internal/adapters/blobstore"
	"github.com/altruan/pulpobot/internal/adapters/pulpo"
	"github.com/altruan/pulpobot/internal/adapters/sheets"
	"github.com/altruan/pulpobot/internal/adapters/weclapp"
	"github.com/altruan/pulpobot/internal/application/planning"
	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/internal/domain/shared"
	"github.com/altruan/pulpobot/internal/infrastructure/config"
)

// buildOrchestrator wires every adapter behind its port and assembles one
// planning run. Roster store and source degrade to nil when unconfigured;
// the orchestrator then runs on the default roster.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*planning.Orchestrator, error) {
	policy := picking.DefaultPolicy()

	location, err := time.LoadLocation(cfg.Warehouse.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid warehouse timezone %q: %w", cfg.Warehouse.Timezone, err)
	}

	skus, err := config.LoadSkusToBatch(cfg.Warehouse.SkusFile)
	if err != nil {
		return nil, err
	}

	wmsClient := pulpo.NewClient(pulpo.Config{
		BaseURL:    cfg.WMS.BaseURL,
		SandboxURL: cfg.WMS.SandboxURL,
		Sandbox:    cfg.WMS.Sandbox,
		Username:   cfg.WMS.Username,
		Password:   cfg.WMS.Password,
		MaxCalls:   cfg.WMS.MaxCalls,
		TimeWindow: cfg.WMS.TimeWindow,
		MaxRetries: cfg.WMS.MaxRetries,
		RetryDelay: cfg.WMS.RetryDelay,
		Timeout:    cfg.WMS.Timeout,
	}, shared.NewRealClock(), logger)
	gateway := pulpo.NewGateway(wmsClient, &policy, logger)

	articles := weclapp.NewClient(weclapp.Config{
		BaseURL:           cfg.Weclapp.BaseURL,
		APIToken:          cfg.Weclapp.APIToken,
		RequestsPerSecond: cfg.Weclapp.RequestsPerSecond,
		Timeout:           cfg.Weclapp.Timeout,
		Attributes: weclapp.AttributeIDs{
			Level:            cfg.Weclapp.Attributes.Level,
			PackQuantity:     cfg.Weclapp.Attributes.PackQuantity,
			CartonQuantity:   cfg.Weclapp.Attributes.CartonQuantity,
			ShippingQuantity: cfg.Weclapp.Attributes.ShippingQuantity,
			LevelArtikel:     cfg.Weclapp.Attributes.LevelArtikel,
			LevelPackung:     cfg.Weclapp.Attributes.LevelPackung,
			LevelKarton:      cfg.Weclapp.Attributes.LevelKarton,
			LevelKeine:       cfg.Weclapp.Attributes.LevelKeine,
		},
	}, logger)

	var store picking.RosterStore
	if cfg.Blob.ConnectionString != "" {
		rosterStore, err := blobstore.NewRosterStore(
			cfg.Blob.ConnectionString, cfg.Blob.Container, cfg.Blob.BlobName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up roster store: %w", err)
		}
		store = rosterStore
	} else {
		logger.Warn("no blob connection string configured, roster will not persist")
	}

	var source picking.RosterSource
	if cfg.Sheets.SpreadsheetID != "" && cfg.Sheets.CredentialsJSON != "" {
		rosterSource, err := sheets.NewRosterSource(ctx, sheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			SheetName:       cfg.Sheets.SheetName,
			CredentialsJSON: []byte(cfg.Sheets.CredentialsJSON),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up roster source: %w", err)
		}
		source = rosterSource
	} else {
		logger.Warn("no picker spreadsheet configured, roster refresh disabled")
	}

	notifier := alerting.NewTeamsWebhook(cfg.Alerting.TeamsWebhookURL, logger)

	return planning.NewOrchestrator(
		gateway, articles, store, source, notifier,
		&policy, skus, shared.NewRealClock(), location, logger), nil
}
