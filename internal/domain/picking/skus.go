package picking

// SkuBatchRule marks a product for the special palette regime. Orders whose
// quantity reaches SeparateBatchFrom ship as individual palettes before
// regular batching sees the rest.
type SkuBatchRule struct {
	ID                int64 `json:"id"`
	SeparateBatchFrom int   `json:"separate_batch_from"`
}

// SkusToBatch maps a SKU to its special batching rule
type SkusToBatch map[string]SkuBatchRule

// ProductIDs returns the product ids under the special regime
func (s SkusToBatch) ProductIDs() []int64 {
	ids := make([]int64, 0, len(s))
	for _, rule := range s {
		ids = append(ids, rule.ID)
	}
	return ids
}

// SeparationValue returns the palette separation quantity for a product,
// zero when the product is not under the special regime
func (s SkusToBatch) SeparationValue(productID int64) int {
	for _, rule := range s {
		if rule.ID == productID {
			return rule.SeparateBatchFrom
		}
	}
	return 0
}

// HasProduct reports whether the product is under the special regime
func (s SkusToBatch) HasProduct(productID int64) bool {
	for _, rule := range s {
		if rule.ID == productID {
			return true
		}
	}
	return false
}
