package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/damneddesigns/storefront/internal/domain/checkout"
)

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Code}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #222; font-size: 13px; }
  h1 { font-size: 20px; margin-bottom: 0; }
  .meta { color: #666; margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th { text-align: left; border-bottom: 2px solid #222; padding: 6px 4px; }
  td { border-bottom: 1px solid #ddd; padding: 6px 4px; }
  .num { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 3px 4px; }
  .grand td { border-top: 2px solid #222; font-weight: bold; }
</style>
</head>
<body>
  <h1>{{.ShopName}}</h1>
  <div class="meta">
    Invoice for order <strong>{{.Code}}</strong><br>
    {{if .PlacedAt}}Placed {{.PlacedAt}}<br>{{end}}
    {{.CustomerEmail}}
  </div>

  {{if .ShipTo}}
  <div>
    <strong>Ship to</strong><br>
    {{range .ShipTo}}{{.}}<br>{{end}}
  </div>
  {{end}}

  <table>
    <tr><th>Item</th><th>SKU</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Total</th></tr>
    {{range .Lines}}
    <tr>
      <td>{{.ProductName}}</td>
      <td>{{.SKU}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{.UnitPrice}}</td>
      <td class="num">{{.LineTotal}}</td>
    </tr>
    {{end}}
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{.SubTotal}}</td></tr>
    {{if .Discount}}<tr><td>Discount{{if .CouponCode}} ({{.CouponCode}}){{end}}</td><td class="num">-{{.Discount}}</td></tr>{{end}}
    <tr><td>Shipping</td><td class="num">{{.Shipping}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{.Total}} {{.Currency}}</td></tr>
  </table>
</body>
</html>`))

type invoiceLine struct {
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   string
	LineTotal   string
}

type invoiceData struct {
	ShopName      string
	Code          string
	PlacedAt      string
	CustomerEmail string
	ShipTo        []string
	Lines         []invoiceLine
	SubTotal      string
	Discount      string
	CouponCode    string
	Shipping      string
	Total         string
	Currency      string
}

// InvoiceRenderer builds the invoice document for an order and renders
// it to PDF
type InvoiceRenderer struct {
	renderer PDFRenderer
	shopName string
}

// NewInvoiceRenderer creates an invoice renderer
func NewInvoiceRenderer(renderer PDFRenderer, shopName string) *InvoiceRenderer {
	if shopName == "" {
		shopName = "Damned Designs"
	}
	return &InvoiceRenderer{renderer: renderer, shopName: shopName}
}

// RenderInvoice renders the order invoice PDF
func (r *InvoiceRenderer) RenderInvoice(ctx context.Context, order *checkout.Order) ([]byte, error) {
	html, err := r.InvoiceHTML(order)
	if err != nil {
		return nil, err
	}
	return r.renderer.RenderPDF(ctx, html)
}

// InvoiceHTML builds the invoice HTML document for an order
func (r *InvoiceRenderer) InvoiceHTML(order *checkout.Order) (string, error) {
	data := invoiceData{
		ShopName:      r.shopName,
		Code:          order.Code,
		CustomerEmail: order.CustomerEmail,
		SubTotal:      order.SubTotal.StringFixed(2),
		Shipping:      order.EffectiveShippingTotal().StringFixed(2),
		Total:         order.Total.StringFixed(2),
		Currency:      string(order.Currency),
		CouponCode:    order.CouponCode,
	}
	if order.PlacedAt != nil {
		data.PlacedAt = order.PlacedAt.Format("January 2, 2006")
	}
	if !order.DiscountTotal.IsZero() {
		data.Discount = order.DiscountTotal.StringFixed(2)
	}

	addr := order.ShippingAddress
	if addr.CountryCode != "" {
		lines := []string{addr.FullName, addr.StreetLine1}
		if addr.StreetLine2 != "" {
			lines = append(lines, addr.StreetLine2)
		}
		lines = append(lines,
			fmt.Sprintf("%s, %s %s", addr.City, addr.Province, addr.PostalCode),
			addr.CountryCode,
		)
		data.ShipTo = lines
	}

	for _, line := range order.Lines {
		data.Lines = append(data.Lines, invoiceLine{
			ProductName: line.ProductName,
			SKU:         line.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}
