package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	offerA = Offer{SKU: "A", Quantity: 3, Price: 130}
	offerB = Offer{SKU: "B", Quantity: 2, Price: 45}
)

func units(sku string, price Money, n int) []Line {
	out := make([]Line, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Line{SKU: sku, Qty: 1, UnitPrice: price})
	}
	return out
}

func TestComputeScenarios(t *testing.T) {
	cases := []struct {
		name   string
		lines  []Line
		offers []Offer
		want   Money
	}{
		{name: "empty basket", offers: []Offer{offerA}, want: 0},
		{name: "single unit without offer", lines: units("A", 50, 1), want: 50},
		{name: "exact bundle", lines: units("A", 50, 3), offers: []Offer{offerA}, want: 130},
		{name: "bundle plus leftover", lines: units("A", 50, 4), offers: []Offer{offerA}, want: 180},
		{
			name:   "two skus with offers",
			lines:  append(units("B", 30, 2), units("A", 50, 3)...),
			offers: []Offer{offerA, offerB},
			want:   175,
		},
		{name: "below bundle size", lines: units("A", 50, 2), offers: []Offer{offerA}, want: 100},
		{name: "offer for other sku", lines: units("C", 20, 2), offers: []Offer{offerA}, want: 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Compute(tc.lines, tc.offers).Total)
		})
	}
}

func TestComputeIsOrderIndependent(t *testing.T) {
	a := units("A", 50, 3)
	b := units("B", 30, 2)
	interleaved := []Line{b[0], a[0], a[1], b[1], a[2]}
	grouped := append(append([]Line{}, a...), b...)
	offers := []Offer{offerA, offerB}

	require.Equal(t, Compute(grouped, offers), Compute(interleaved, offers))
}

func TestComputeBreakdown(t *testing.T) {
	lines := append(units("A", 50, 4), units("B", 30, 1)...)
	summary := Compute(lines, []Offer{offerA})

	require.Len(t, summary.Lines, 2)
	a := summary.Lines[0]
	require.Equal(t, "A", a.SKU)
	require.Equal(t, 4, a.Qty)
	require.Equal(t, 1, a.Bundles)
	require.Equal(t, 1, a.Leftover)
	require.Equal(t, Money(180), a.Subtotal)
	require.Equal(t, Money(20), a.Savings)
	require.NotNil(t, a.Offer)

	b := summary.Lines[1]
	require.Equal(t, "B", b.SKU)
	require.Nil(t, b.Offer)
	require.Equal(t, Money(30), b.Subtotal)

	require.Equal(t, Money(230), summary.ListPrice)
	require.Equal(t, Money(20), summary.Discount)
	require.Equal(t, Money(210), summary.Total)
}

func TestComputeLastOfferWins(t *testing.T) {
	offers := []Offer{offerA, {SKU: "A", Quantity: 2, Price: 90}}
	summary := Compute(units("A", 50, 3), offers)
	require.Equal(t, Money(140), summary.Total)
}

func TestComputeUsesFirstUnitPrice(t *testing.T) {
	lines := []Line{{SKU: "A", Qty: 1, UnitPrice: 50}, {SKU: "A", Qty: 1, UnitPrice: 70}}
	summary := Compute(lines, nil)
	require.Equal(t, Money(100), summary.Total)
}

func TestComputeSkipsNonPositiveQty(t *testing.T) {
	lines := []Line{{SKU: "A", Qty: 0, UnitPrice: 50}, {SKU: "A", Qty: -2, UnitPrice: 50}}
	summary := Compute(lines, nil)
	require.Empty(t, summary.Lines)
	require.Zero(t, summary.Total)
}

func TestLineTotalIgnoresInvalidOffer(t *testing.T) {
	line := LineTotal(4, 10, &Offer{SKU: "A", Quantity: 0, Price: 1})
	require.Equal(t, Money(40), line.Subtotal)
	require.Zero(t, line.Bundles)
}
