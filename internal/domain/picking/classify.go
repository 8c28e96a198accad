package picking

import (
	"strings"
	"time"
)

// Classification is the run-scoped view of one order along the axes the
// planners branch on
type Classification struct {
	Prio         bool
	LabelShare   float64
	SizeNote     string
	Seni         bool
	CartSuitable bool
}

// Classifier computes order classifications against a wall-clock instant
// frozen at run start. Results are memoized per order so every planner
// observes the same classification regardless of invocation order.
type Classifier struct {
	policy *Policy
	now    time.Time
	skus   SkusToBatch
	memo   map[int64]Classification
}

// NewClassifier creates a classifier for one run. now must already be in
// warehouse local time.
func NewClassifier(policy *Policy, now time.Time, skus SkusToBatch) *Classifier {
	return &Classifier{
		policy: policy,
		now:    now,
		skus:   skus,
		memo:   make(map[int64]Classification),
	}
}

// Classify returns the order's classification, computing it on first sight
func (c *Classifier) Classify(order *FulfillmentOrder) Classification {
	if class, ok := c.memo[order.ID]; ok {
		return class
	}
	labelShare := ExtractLabelShare(order.Criterium)
	class := Classification{
		Prio:         c.IsPrio(order),
		LabelShare:   labelShare,
		SizeNote:     SizeNote(labelShare),
		Seni:         c.ContainsSeni(order),
		CartSuitable: c.suitableForCart(order, labelShare),
	}
	c.memo[order.ID] = class
	return class
}

// IsPrio applies the three time-band priority rules. Before the yesterday
// window opens, far-range German orders already late are elevated; inside the
// window (or on non-working days) every late order is; after it closes,
// far-range German orders are elevated outright.
func (c *Classifier) IsPrio(order *FulfillmentOrder) bool {
	hour := c.now.Hour()
	working := c.policy.IsWorkingDay(c.now.Weekday())
	farRange := order.ShipTo.Address.CountryCode == c.policy.GermanyCountryCode &&
		c.zipInFarRange(order.ShipTo.Address.Zip)

	switch {
	case hour < c.policy.YesterdayStartHour && working && farRange && c.isPastDeliveryDate(order):
		return true
	case (hour >= c.policy.YesterdayStartHour && hour <= c.policy.YesterdayEndHour || !working) &&
		c.isPastDeliveryDate(order):
		return true
	case hour > c.policy.YesterdayEndHour && working && farRange:
		return true
	}
	return false
}

// isPastDeliveryDate reports whether the order missed its delivery date.
// The stored date gets the timezone correction before the day comparison;
// missing or unparseable dates are never late.
func (c *Classifier) isPastDeliveryDate(order *FulfillmentOrder) bool {
	if order.DeliveryDate == "" {
		return false
	}
	deliveryDate, err := time.Parse(WMSTimeFormat, order.DeliveryDate)
	if err != nil {
		return false
	}
	deliveryDate = deliveryDate.Add(c.policy.DeliveryDateCorrection)
	return beforeDay(deliveryDate, c.now)
}

func (c *Classifier) zipInFarRange(zip string) bool {
	if zip == "" {
		return false
	}
	for _, prefix := range c.policy.FarZipPrefixes {
		if strings.HasPrefix(zip, prefix) {
			return true
		}
	}
	return false
}

// ContainsSeni reports whether any item is a Seni product, by manufacturer
// category or by product name
func (c *Classifier) ContainsSeni(order *FulfillmentOrder) bool {
	for _, item := range order.Items {
		for _, category := range item.Product.ProductCategories {
			if category.ID == c.policy.SeniManufacturerID {
				return true
			}
		}
		if strings.Contains(item.Product.Name, c.policy.SeniNameIdentifier) {
			return true
		}
	}
	return false
}

// SuitableForPicking reports whether the order may enter the run at all
func (c *Classifier) SuitableForPicking(order *FulfillmentOrder) bool {
	return order.State == QueueState
}

// SuitableForCart reports whether the order may be grouped into a cart.
// During sweeping time every order qualifies.
func (c *Classifier) SuitableForCart(order *FulfillmentOrder, sweeping bool) bool {
	if sweeping {
		return true
	}
	return c.Classify(order).CartSuitable
}

func (c *Classifier) suitableForCart(order *FulfillmentOrder, labelShare float64) bool {
	for _, item := range order.Items {
		if _, ok := c.skus[item.Product.SKU]; ok {
			return false
		}
	}
	if labelShare >= PaletteLabelShare {
		return false
	}
	if c.policy.IsSpecialShipping(order.ShippingMethodID) {
		return false
	}
	return true
}

// Now exposes the frozen classification instant
func (c *Classifier) Now() time.Time {
	return c.now
}

// beforeDay compares calendar days only, ignoring the time of day
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
