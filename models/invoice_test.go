package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeInvoiceTotals(t *testing.T) {
	items := []*NewInvoiceItem{
		{Description: "Ocean freight", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(350.50)},
		{Description: "Customs clearance", UnitPrice: decimal.NewFromInt(120)},
	}

	lines, subtotal, taxTotal, total := ComputeInvoiceTotals(items, decimal.NewFromFloat(0.2))

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := lines[0].Amount.String(); got != "701" {
		t.Fatalf("line 1 amount: expected 701, got %s", got)
	}
	// zero quantity defaults to 1
	if got := lines[1].Quantity.String(); got != "1" {
		t.Fatalf("line 2 quantity: expected 1, got %s", got)
	}
	if got := lines[1].Amount.String(); got != "120" {
		t.Fatalf("line 2 amount: expected 120, got %s", got)
	}
	if got := subtotal.String(); got != "821" {
		t.Fatalf("subtotal: expected 821, got %s", got)
	}
	if got := taxTotal.String(); got != "164.2" {
		t.Fatalf("tax total: expected 164.2, got %s", got)
	}
	if got := total.String(); got != "985.2" {
		t.Fatalf("total: expected 985.2, got %s", got)
	}
}

func TestComputeInvoiceTotalsZeroTax(t *testing.T) {
	items := []*NewInvoiceItem{
		{Description: "Haulage", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromFloat(99.99)},
	}

	_, subtotal, taxTotal, total := ComputeInvoiceTotals(items, decimal.Zero)

	if got := subtotal.String(); got != "299.97" {
		t.Fatalf("subtotal: expected 299.97, got %s", got)
	}
	if !taxTotal.IsZero() {
		t.Fatalf("tax total: expected zero, got %s", taxTotal.String())
	}
	if !total.Equal(subtotal) {
		t.Fatalf("total should equal subtotal with zero tax, got %s", total.String())
	}
}
