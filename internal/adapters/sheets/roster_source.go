package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/altruan/pulpobot/internal/domain/picking"
	"github.com/altruan/pulpobot/internal/domain/shared"
)

// Default column ranges of the picker spreadsheet, one column per roster
// category, headers in row 1
var defaultRanges = map[string]string{
	picking.RosterPalette:      "B2:B",
	picking.RosterPartnerkunde: "C2:C",
}

// Config locates the maintained picker lists
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
	// Ranges maps roster category to an A1 column range; defaults cover
	// both standard categories
	Ranges map[string]string
}

// RosterSource reads picker usernames from the spreadsheet the warehouse
// leads maintain. It implements the picking.RosterSource port, read-only.
type RosterSource struct {
	service *sheets.Service
	cfg     Config
	logger  *zap.Logger
}

// NewRosterSource creates the source. Missing spreadsheet settings are a
// ConfigError; the roster refresh is skipped in that case.
func NewRosterSource(ctx context.Context, cfg Config, logger *zap.Logger) (*RosterSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, shared.NewConfigError("spreadsheet id", "not set")
	}
	if len(cfg.CredentialsJSON) == 0 {
		return nil, shared.NewConfigError("spreadsheet credentials", "not set")
	}
	if cfg.Ranges == nil {
		cfg.Ranges = defaultRanges
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(cfg.CredentialsJSON),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &RosterSource{service: service, cfg: cfg, logger: logger}, nil
}

// Usernames returns the maintained usernames per roster category. Blank
// cells are skipped.
func (s *RosterSource) Usernames(ctx context.Context) (map[string][]string, error) {
	categories := make([]string, 0, len(s.cfg.Ranges))
	ranges := make([]string, 0, len(s.cfg.Ranges))
	for category, columnRange := range s.cfg.Ranges {
		categories = append(categories, category)
		ranges = append(ranges, s.a1Range(columnRange))
	}

	resp, err := s.service.Spreadsheets.Values.BatchGet(s.cfg.SpreadsheetID).
		Ranges(ranges...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read picker spreadsheet: %w", err)
	}
	if len(resp.ValueRanges) != len(categories) {
		return nil, fmt.Errorf("picker spreadsheet returned %d ranges, expected %d",
			len(resp.ValueRanges), len(categories))
	}

	usernames := make(map[string][]string, len(categories))
	for i, valueRange := range resp.ValueRanges {
		var names []string
		for _, row := range valueRange.Values {
			if len(row) == 0 {
				continue
			}
			name, ok := row[0].(string)
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			names = append(names, name)
		}
		usernames[categories[i]] = names
	}
	return usernames, nil
}

// a1Range qualifies a column range with the sheet name when one is set
func (s *RosterSource) a1Range(columnRange string) string {
	if s.cfg.SheetName == "" {
		return columnRange
	}
	return fmt.Sprintf("'%s'!%s", s.cfg.SheetName, columnRange)
}
