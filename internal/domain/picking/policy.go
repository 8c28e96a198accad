package picking

import (
	"math"
	"time"

	"github.com/samber/lo"
)

// WMSTimeFormat is the layout of WMS timestamps, which carry no zone suffix
const WMSTimeFormat = "2006-01-02T15:04:05"

// QueueState is the fulfillment state eligible for pick creation
const QueueState = "queue"

// Policy carries the warehouse tunables the classification rules and
// planners run under. Defaults mirror the production warehouse; the config
// layer may override individual fields.
type Policy struct {
	// Shipping method ids that force an individual palette pick
	AltruanLieferdienst   int64
	Abholung              int64
	Palettenversand       int64
	DBSchenker            int64
	DBSchenkerEuropalette int64

	// Zones whose stock counts toward picking availability
	PickingZones []int64

	// Priority window. Orders late against their delivery date are
	// elevated inside [YesterdayStartHour, YesterdayEndHour]; far-range
	// German ZIPs are elevated outside it on working days.
	YesterdayStartHour int
	YesterdayEndHour   int
	WorkingDays        []time.Weekday
	GermanyCountryCode string
	FarZipPrefixes     []string
	// Hours added to the stored delivery date before comparing dates
	DeliveryDateCorrection time.Duration
	NormalPriority         int

	// Channels whose orders go straight to the Partnerkunde pickers
	PartnerkundeSalesChannels []string

	// Seni detection
	SeniManufacturerID int64
	SeniNameIdentifier string

	// Batch planning
	MinBatchSize     int
	MaxBatchSize     int
	MinBatchSizeSeni int

	// Cart planning
	NonPrioThreshold  int
	PrioThreshold     float64
	PickingStates     []string
	SweepingMinOrders int
	CartSizes         []CartSize

	// Low-queue behavior
	RunningDryNumOrders   int
	RunningDryDenominator float64

	// Orchestration windows, hours in warehouse local time
	NightCleaningHours []int
	PickersUpdateHours []int
	SweepingHours      []int
}

// DefaultPolicy returns the production tunables
func DefaultPolicy() Policy {
	return Policy{
		AltruanLieferdienst:   807,
		Abholung:              665,
		Palettenversand:       604,
		DBSchenker:            605,
		DBSchenkerEuropalette: 1097,

		PickingZones: []int64{1419, 1423, 1472, 1417},

		YesterdayStartHour:     0,
		YesterdayEndHour:       24,
		WorkingDays:            []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		GermanyCountryCode:     "276",
		FarZipPrefixes:         []string{"1", "2", "3", "4"},
		DeliveryDateCorrection: 2 * time.Hour,
		NormalPriority:         1,

		PartnerkundeSalesChannels: []string{"Partnerkunde (netto)"},

		SeniManufacturerID: 6468,
		SeniNameIdentifier: "Seni",

		MinBatchSize:     5,
		MaxBatchSize:     100,
		MinBatchSizeSeni: 3,

		NonPrioThreshold:  10,
		PrioThreshold:     math.Inf(1),
		PickingStates:     []string{"queue", "taken"},
		SweepingMinOrders: 1,
		CartSizes:         CartSizes(),

		RunningDryNumOrders:   100,
		RunningDryDenominator: 0.1,

		NightCleaningHours: []int{2, 3},
		PickersUpdateHours: []int{4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17},
		SweepingHours:      []int{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17},
	}
}

// SpecialShippingMethods returns the shipping method ids excluded from carts
// and batched as individual palette picks
func (p *Policy) SpecialShippingMethods() []int64 {
	return []int64{
		p.AltruanLieferdienst,
		p.Abholung,
		p.Palettenversand,
		p.DBSchenker,
		p.DBSchenkerEuropalette,
	}
}

// IsSpecialShipping reports whether the shipping method forces palette
// handling
func (p *Policy) IsSpecialShipping(shippingMethodID int64) bool {
	return lo.Contains(p.SpecialShippingMethods(), shippingMethodID)
}

// SpecialShippingNote returns the note token for a special shipping method,
// empty when the method is not special or carries no token
func (p *Policy) SpecialShippingNote(shippingMethodID int64) string {
	switch shippingMethodID {
	case p.Abholung:
		return NoteAbholung
	case p.DBSchenker:
		return NotePalette
	case p.AltruanLieferdienst:
		return NoteAltruanLieferdienst
	case p.DBSchenkerEuropalette:
		return NotePalette
	}
	return ""
}

// IsWorkingDay reports whether the weekday is a configured working day
func (p *Policy) IsWorkingDay(day time.Weekday) bool {
	return lo.Contains(p.WorkingDays, day)
}

// IsPickingZone reports whether stock in the zone counts toward availability
func (p *Policy) IsPickingZone(zoneID int64) bool {
	return lo.Contains(p.PickingZones, zoneID)
}

// IsPartnerkundeChannel reports whether the sales channel routes to the
// Partnerkunde pickers
func (p *Policy) IsPartnerkundeChannel(channel string) bool {
	return lo.Contains(p.PartnerkundeSalesChannels, channel)
}

// IsSweepingHour reports whether carts may be swept out at minimum size
func (p *Policy) IsSweepingHour(hour int) bool {
	return lo.Contains(p.SweepingHours, hour)
}

// IsNightCleaningHour reports whether unowned queued picks get deleted
func (p *Policy) IsNightCleaningHour(hour int) bool {
	return lo.Contains(p.NightCleaningHours, hour)
}

// IsPickersUpdateHour reports whether the roster refresh runs
func (p *Policy) IsPickersUpdateHour(hour int) bool {
	return lo.Contains(p.PickersUpdateHours, hour)
}
