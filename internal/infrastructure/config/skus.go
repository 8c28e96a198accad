package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// LoadSkusToBatch reads the special-regime SKU file, a JSON object mapping a
// SKU to its product id and palette separation quantity:
//
//	{"MCK-28521": {"id": 59782, "separate_batch_from": 20}}
//
// An empty path yields an empty rule set; a missing or unreadable file is an
// error so a misplaced file cannot silently disable the regime.
func LoadSkusToBatch(path string) (picking.SkusToBatch, error) {
	if path == "" {
		return picking.SkusToBatch{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skus file %s: %w", path, err)
	}

	var skus picking.SkusToBatch
	if err := json.Unmarshal(data, &skus); err != nil {
		return nil, fmt.Errorf("failed to parse skus file %s: %w", path, err)
	}
	return skus, nil
}
