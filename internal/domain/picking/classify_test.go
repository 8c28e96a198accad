package picking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/altruan/pulpobot/internal/domain/picking"
)

// runClock is the pinned instant most tests classify against, a Wednesday
var runClock = time.Date(2024, 10, 2, 6, 0, 0, 0, time.UTC)

func queuedOrder(id int64) *picking.FulfillmentOrder {
	return &picking.FulfillmentOrder{
		ID:           id,
		SalesOrderID: id,
		State:        picking.QueueState,
		Priority:     1,
		Criterium:    "LA_0_5",
		ShipTo:       picking.ShipTo{Address: picking.Address{CountryCode: "276", Zip: "86899"}},
		Items: []picking.Item{
			{ProductID: 100, Quantity: 1, Product: picking.Product{ID: 100, Name: "Handschuhe M", SKU: "HS-M"}},
		},
	}
}

func newClassifier(policy picking.Policy, now time.Time) *picking.Classifier {
	return picking.NewClassifier(&policy, now, picking.SkusToBatch{})
}

func TestClassifier_IsPrio_LateDeliveryInsideYesterdayWindow(t *testing.T) {
	// Arrange
	c := newClassifier(picking.DefaultPolicy(), runClock)
	order := queuedOrder(1)
	order.DeliveryDate = "2024-09-30T10:00:00"

	// Act & Assert
	assert.True(t, c.IsPrio(order))
}

func TestClassifier_IsPrio_OnTimeDeliveryIsNotElevated(t *testing.T) {
	c := newClassifier(picking.DefaultPolicy(), runClock)
	order := queuedOrder(1)
	order.DeliveryDate = "2024-10-04T10:00:00"

	assert.False(t, c.IsPrio(order))
}

func TestClassifier_IsPrio_MissingDeliveryDateIsNotLate(t *testing.T) {
	c := newClassifier(picking.DefaultPolicy(), runClock)
	order := queuedOrder(1)
	order.DeliveryDate = ""

	assert.False(t, c.IsPrio(order))
}

func TestClassifier_IsPrio_CorrectionShiftsDeliveryIntoToday(t *testing.T) {
	// 23:30 the day before plus the two hour correction lands on the run
	// day, so the order is not late yet
	c := newClassifier(picking.DefaultPolicy(), runClock)
	order := queuedOrder(1)
	order.DeliveryDate = "2024-10-01T23:30:00"

	assert.False(t, c.IsPrio(order))
}

func TestClassifier_IsPrio_FarZipAfterWindowCloses(t *testing.T) {
	// Arrange: narrow the yesterday window so the afternoon band is
	// reachable
	policy := picking.DefaultPolicy()
	policy.YesterdayStartHour = 9
	policy.YesterdayEndHour = 14
	afternoon := time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC)
	c := newClassifier(policy, afternoon)

	farZip := queuedOrder(1)
	farZip.ShipTo.Address.Zip = "22041"
	nearZip := queuedOrder(2)
	nearZip.ShipTo.Address.Zip = "86899"
	abroad := queuedOrder(3)
	abroad.ShipTo.Address.Zip = "22041"
	abroad.ShipTo.Address.CountryCode = "040"

	// Act & Assert
	assert.True(t, c.IsPrio(farZip))
	assert.False(t, c.IsPrio(nearZip))
	assert.False(t, c.IsPrio(abroad))
}

func TestClassifier_IsPrio_MorningBandNeedsLateAndFarZip(t *testing.T) {
	policy := picking.DefaultPolicy()
	policy.YesterdayStartHour = 9
	policy.YesterdayEndHour = 14
	morning := time.Date(2024, 10, 2, 7, 0, 0, 0, time.UTC)
	c := newClassifier(policy, morning)

	late := queuedOrder(1)
	late.ShipTo.Address.Zip = "30159"
	late.DeliveryDate = "2024-09-30T10:00:00"
	assert.True(t, c.IsPrio(late))

	onTime := queuedOrder(2)
	onTime.ShipTo.Address.Zip = "30159"
	assert.False(t, c.IsPrio(onTime))

	lateNearZip := queuedOrder(3)
	lateNearZip.ShipTo.Address.Zip = "86899"
	lateNearZip.DeliveryDate = "2024-09-30T10:00:00"
	assert.False(t, c.IsPrio(lateNearZip))
}

func TestClassifier_IsPrio_NonWorkingDayElevatesLateOrders(t *testing.T) {
	policy := picking.DefaultPolicy()
	policy.YesterdayStartHour = 9
	policy.YesterdayEndHour = 14
	saturday := time.Date(2024, 10, 5, 7, 0, 0, 0, time.UTC)
	c := newClassifier(policy, saturday)

	late := queuedOrder(1)
	late.DeliveryDate = "2024-10-03T10:00:00"
	assert.True(t, c.IsPrio(late))

	onTime := queuedOrder(2)
	onTime.ShipTo.Address.Zip = "22041"
	assert.False(t, c.IsPrio(onTime), "the afternoon band does not apply on weekends")
}

func TestClassifier_ContainsSeni(t *testing.T) {
	c := newClassifier(picking.DefaultPolicy(), runClock)

	byCategory := queuedOrder(1)
	byCategory.Items[0].Product.ProductCategories = []picking.ProductCategory{{ID: 6468, Name: "Seni"}}
	assert.True(t, c.ContainsSeni(byCategory))

	byName := queuedOrder(2)
	byName.Items[0].Product.Name = "Seni Super Plus"
	assert.True(t, c.ContainsSeni(byName))

	neither := queuedOrder(3)
	assert.False(t, c.ContainsSeni(neither))
}

func TestClassifier_SuitableForPicking(t *testing.T) {
	c := newClassifier(picking.DefaultPolicy(), runClock)

	queued := queuedOrder(1)
	assert.True(t, c.SuitableForPicking(queued))

	taken := queuedOrder(2)
	taken.State = "taken"
	assert.False(t, c.SuitableForPicking(taken))
}

func TestClassifier_SuitableForCart_ExclusionRules(t *testing.T) {
	policy := picking.DefaultPolicy()
	skus := picking.SkusToBatch{"HS-M": {ID: 100, SeparateBatchFrom: 30}}
	c := picking.NewClassifier(&policy, runClock, skus)

	batchedSku := queuedOrder(1)
	assert.False(t, c.SuitableForCart(batchedSku, false))

	palette := queuedOrder(2)
	palette.Items[0].Product.SKU = "OTHER"
	palette.Criterium = "LA_9_0"
	assert.False(t, c.SuitableForCart(palette, false))

	specialShipping := queuedOrder(3)
	specialShipping.Items[0].Product.SKU = "OTHER"
	specialShipping.ShippingMethodID = 604
	assert.False(t, c.SuitableForCart(specialShipping, false))

	regular := queuedOrder(4)
	regular.Items[0].Product.SKU = "OTHER"
	assert.True(t, c.SuitableForCart(regular, false))
}

func TestClassifier_SuitableForCart_SweepingAdmitsEverything(t *testing.T) {
	policy := picking.DefaultPolicy()
	skus := picking.SkusToBatch{"HS-M": {ID: 100, SeparateBatchFrom: 30}}
	c := picking.NewClassifier(&policy, runClock, skus)

	order := queuedOrder(1)
	order.Criterium = "LA_9_0"
	order.ShippingMethodID = 604

	assert.True(t, c.SuitableForCart(order, true))
}

func TestClassifier_Classify_IsMemoizedPerOrder(t *testing.T) {
	// Arrange
	c := newClassifier(picking.DefaultPolicy(), runClock)
	order := queuedOrder(1)
	order.DeliveryDate = "2024-09-30T10:00:00"

	// Act
	first := c.Classify(order)
	order.Criterium = "LA_9_0" // mutation after first sight must not show
	second := c.Classify(order)

	// Assert
	assert.Equal(t, first, second)
	assert.True(t, first.Prio)
	assert.Equal(t, 0.5, first.LabelShare)
	assert.Equal(t, picking.NoteSizeM1, first.SizeNote)
}

func TestClassifier_Classify_SameClockSameResult(t *testing.T) {
	policy := picking.DefaultPolicy()
	order := queuedOrder(1)
	order.DeliveryDate = "2024-09-30T10:00:00"

	a := picking.NewClassifier(&policy, runClock, picking.SkusToBatch{}).Classify(order)
	b := picking.NewClassifier(&policy, runClock, picking.SkusToBatch{}).Classify(order)

	assert.Equal(t, a, b)
}
