package picking

import (
	"strconv"
	"strings"
)

// NoteParams carries the per-pick inputs of the note grammar
type NoteParams struct {
	OrderIDs        []int64
	SingleOrder     *FulfillmentOrder
	SizeNote        string
	BatchedQuantity int
	BatchedProduct  string
	Shelf           string
}

// NoteBuilder composes picking-order notes. The token order is fixed:
// base, Seni, priority, Batch, special shipping, Partnerkunde, Rest, size,
// batched quantity and product, shelf, order count. Tokens that do not apply
// are skipped, never reordered.
type NoteBuilder struct {
	policy     *Policy
	classifier *Classifier
	orders     []*FulfillmentOrder
	isPrio     bool
	isBatch    bool
	sweeping   bool
}

// NewNoteBuilder creates a builder for one planner invocation. orders is the
// planner's input list, used to resolve sales order ids back to orders for
// the Seni token.
func NewNoteBuilder(policy *Policy, classifier *Classifier, orders []*FulfillmentOrder, isPrio, isBatch, sweeping bool) *NoteBuilder {
	return &NoteBuilder{
		policy:     policy,
		classifier: classifier,
		orders:     orders,
		isPrio:     isPrio,
		isBatch:    isBatch,
		sweeping:   sweeping,
	}
}

// Build composes the note for one pick
func (b *NoteBuilder) Build(params NoteParams) string {
	tokens := []string{NoteBase}

	sizeNote := params.SizeNote
	if sizeNote == "" && params.SingleOrder != nil {
		sizeNote = b.classifier.Classify(params.SingleOrder).SizeNote
	}

	if b.containsSeni(params.OrderIDs) {
		tokens = append(tokens, NoteSeni)
	}

	if params.SingleOrder != nil && params.SingleOrder.Priority > b.policy.NormalPriority {
		tokens = append(tokens, NotePrio, strconv.Itoa(params.SingleOrder.Priority))
	} else if b.isPrio {
		tokens = append(tokens, b.priorityBase())
	}

	if b.isBatch {
		tokens = append(tokens, NoteBatch)
	}

	if params.SingleOrder != nil {
		if shipping := b.policy.SpecialShippingNote(params.SingleOrder.ShippingMethodID); shipping != "" {
			tokens = append(tokens, shipping)
		}
		if b.policy.IsPartnerkundeChannel(params.SingleOrder.Channel) {
			tokens = append(tokens, NotePartnerkunde)
		}
	}

	if b.sweeping && b.isPrio {
		tokens = append(tokens, NoteSweeper)
	}

	if sizeNote != "" {
		tokens = append(tokens, sizeNote)
	}

	if params.BatchedQuantity != 0 && params.BatchedProduct != "" {
		tokens = append(tokens, strconv.Itoa(params.BatchedQuantity), params.BatchedProduct)
	}

	if params.Shelf != "" {
		tokens = append(tokens, params.Shelf)
	}

	if b.sweeping && b.isPrio {
		tokens = append(tokens, strconv.Itoa(len(params.OrderIDs)))
	}

	return strings.Join(tokens, " ")
}

// priorityBase names why the planner run is elevated: Vortag inside the
// yesterday window and on non-working days, PLZ 1-4 otherwise
func (b *NoteBuilder) priorityBase() string {
	now := b.classifier.Now()
	hour := now.Hour()
	inWindow := hour >= b.policy.YesterdayStartHour && hour <= b.policy.YesterdayEndHour
	if inWindow || !b.policy.IsWorkingDay(now.Weekday()) {
		return NoteYesterday
	}
	return NotePLZFarRange
}

// containsSeni reports whether any order behind the ids carries Seni products
func (b *NoteBuilder) containsSeni(orderIDs []int64) bool {
	for _, id := range orderIDs {
		for _, order := range b.orders {
			if order.SalesOrderID == id && b.classifier.Classify(order).Seni {
				return true
			}
		}
	}
	return false
}
