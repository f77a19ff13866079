package pricing

import "sort"

// Money represents a monetary value stored in minor units.
type Money = int64

// Line describes a scanned unit (or several units) of a single SKU.
type Line struct {
	SKU       string
	Qty       int
	UnitPrice Money
}

// Offer prices Quantity units of SKU at Price.
type Offer struct {
	SKU      string
	Quantity int
	Price    Money
}

// LineSummary is the computed price for one SKU.
type LineSummary struct {
	SKU       string
	Qty       int
	UnitPrice Money
	Bundles   int
	Leftover  int
	Subtotal  Money
	Savings   Money
	Offer     *Offer
}

// Summary aggregates computed pricing components.
type Summary struct {
	Lines     []LineSummary
	ListPrice Money
	Discount  Money
	Total     Money
}

// Compute groups lines by SKU and prices every group, applying the matching offer.
// When several offers target one SKU the last one wins.
func Compute(lines []Line, offers []Offer) Summary {
	index := IndexOffers(offers)

	groups := make(map[string]*LineSummary)
	order := make([]string, 0)
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		g, ok := groups[ln.SKU]
		if !ok {
			g = &LineSummary{SKU: ln.SKU, UnitPrice: ln.UnitPrice}
			groups[ln.SKU] = g
			order = append(order, ln.SKU)
		}
		g.Qty += ln.Qty
	}
	sort.Strings(order)

	var summary Summary
	summary.Lines = make([]LineSummary, 0, len(order))
	for _, sku := range order {
		g := groups[sku]
		var offer *Offer
		if o, ok := index[sku]; ok {
			offer = &o
		}
		line := LineTotal(g.Qty, g.UnitPrice, offer)
		line.SKU = sku
		summary.Lines = append(summary.Lines, line)
		summary.ListPrice += Money(line.Qty) * line.UnitPrice
		summary.Total += line.Subtotal
	}
	summary.Discount = summary.ListPrice - summary.Total
	return summary
}

// LineTotal prices count units at unitPrice, forming as many whole offer bundles as possible.
func LineTotal(count int, unitPrice Money, offer *Offer) LineSummary {
	line := LineSummary{Qty: count, UnitPrice: unitPrice}
	if count <= 0 {
		return line
	}
	list := Money(count) * unitPrice
	if offer == nil || offer.Quantity <= 0 {
		line.Leftover = count
		line.Subtotal = list
		return line
	}
	line.Offer = offer
	line.Bundles = count / offer.Quantity
	line.Leftover = count % offer.Quantity
	line.Subtotal = Money(line.Bundles)*offer.Price + Money(line.Leftover)*unitPrice
	line.Savings = list - line.Subtotal
	return line
}

// IndexOffers maps each SKU to its most recently listed offer.
func IndexOffers(offers []Offer) map[string]Offer {
	index := make(map[string]Offer, len(offers))
	for _, o := range offers {
		index[o.SKU] = o
	}
	return index
}
