package domain

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// PricedLineItem pairs a cart line with its computed total.
type PricedLineItem struct {
	Item      CartLineItem    `json:"item"`
	ItemTotal decimal.Decimal `json:"item_total"`
}

// Quote is the computed subtotal/transport/total for a cart and address at a
// point in time. It is recomputed on every cart or address change and only
// persisted when frozen onto a reservation at checkout.
type Quote struct {
	Lines         []PricedLineItem `json:"lines"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TransportCost decimal.Decimal  `json:"transport_cost"`
	Total         decimal.Decimal  `json:"total"`
	MatchedZone   *Zone            `json:"matched_zone,omitempty"`
}

// PriceLineItem computes a line's total: unit price times quantity, plus one
// full extra-hour percentage share of that base for each extra hour. The
// surcharge accumulates additively per hour, it does not compound.
// No rounding is applied; formatting is a presentation concern.
func PriceLineItem(item CartLineItem) decimal.Decimal {
	base := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if item.ExtraHours <= 0 {
		return base
	}
	perHour := base.Mul(item.ExtraHourPercentage).Div(oneHundred)
	return base.Add(perHour.Mul(decimal.NewFromInt(int64(item.ExtraHours))))
}

// AssembleQuote sums all line totals and adds the transport surcharge.
// Pure and idempotent; an empty cart yields subtotal 0, total transportCost.
func AssembleQuote(items []CartLineItem, transportCost decimal.Decimal, matchedZone *Zone) Quote {
	q := Quote{
		Subtotal:      decimal.Zero,
		TransportCost: transportCost,
		MatchedZone:   matchedZone,
	}
	for _, item := range items {
		total := PriceLineItem(item)
		q.Lines = append(q.Lines, PricedLineItem{Item: item, ItemTotal: total})
		q.Subtotal = q.Subtotal.Add(total)
	}
	q.Total = q.Subtotal.Add(transportCost)
	return q
}
