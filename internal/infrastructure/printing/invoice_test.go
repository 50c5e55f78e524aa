package printing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
	"github.com/damneddesigns/storefront/internal/domain/customer"
	"github.com/damneddesigns/storefront/internal/domain/shared/valueobject"
)

type fakePDFRenderer struct {
	lastHTML string
}

func (f *fakePDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	f.lastHTML = html
	return []byte("%PDF-1.4 fake"), nil
}

func (f *fakePDFRenderer) Close() error { return nil }

func invoiceOrder(t *testing.T) *checkout.Order {
	t.Helper()
	order := checkout.NewOrder("buyer@example.com")
	price, err := valueobject.NewMoneyFromString("64.95", "USD")
	require.NoError(t, err)
	_, err = order.AddLine(uuid.New(), "Osiris Knife", "OSIRIS-TI", 2, price)
	require.NoError(t, err)
	require.NoError(t, order.ApplyCoupon("SAVE10", decimal.NewFromFloat(6.50), false))
	require.NoError(t, order.SetShippingAddress(customer.Address{
		FullName:    "Jo Buyer",
		StreetLine1: "1 Forge Lane",
		City:        "Austin",
		Province:    "TX",
		PostalCode:  "78701",
		CountryCode: "US",
	}))
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	order.PlacedAt = &now
	return order
}

func TestInvoiceRenderer_InvoiceHTML(t *testing.T) {
	r := NewInvoiceRenderer(&fakePDFRenderer{}, "Damned Designs")
	order := invoiceOrder(t)

	html, err := r.InvoiceHTML(order)
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Damned Designs")
	assert.Contains(t, html, order.Code)
	assert.Contains(t, html, "buyer@example.com")
	assert.Contains(t, html, "Osiris Knife")
	assert.Contains(t, html, "OSIRIS-TI")
	assert.Contains(t, html, "Jo Buyer")
	assert.Contains(t, html, "Austin, TX 78701")
	assert.Contains(t, html, "March 14, 2026")
	assert.Contains(t, html, "SAVE10")
	assert.Contains(t, html, order.Total.StringFixed(2))
}

func TestInvoiceRenderer_RenderInvoice(t *testing.T) {
	fake := &fakePDFRenderer{}
	r := NewInvoiceRenderer(fake, "")
	order := invoiceOrder(t)

	pdf, err := r.RenderInvoice(context.Background(), order)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Contains(t, fake.lastHTML, order.Code)
}

func TestInvoiceRenderer_EscapesCustomerInput(t *testing.T) {
	r := NewInvoiceRenderer(&fakePDFRenderer{}, "Damned Designs")
	order := checkout.NewOrder("buyer@example.com")
	price, err := valueobject.NewMoneyFromString("10.00", "USD")
	require.NoError(t, err)
	_, err = order.AddLine(uuid.New(), "<script>alert(1)</script>", "SKU-1", 1, price)
	require.NoError(t, err)

	html, err := r.InvoiceHTML(order)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestChromedpRenderer_RejectsEmptyDocument(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{NoSandbox: true})
	defer r.Close()

	_, err := r.RenderPDF(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailed)
}
