package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	templateOrderConfirmation = "order_confirmation"
	templatePaymentReceipt    = "payment_receipt"
	templateShippingNotice    = "shipping_notice"
)

var templates = template.Must(template.New("email").Parse(`
{{define "order_confirmation"}}
<html>
<body>
  <h1>Thanks for your order, {{.OrderCode}}</h1>
  <p>We received your order and will start preparing it once payment is confirmed.</p>
  <p>Order total: <strong>{{.Total}}</strong></p>
  <p><a href="{{.ShopURL}}/orders/{{.OrderCode}}">View your order</a></p>
</body>
</html>
{{end}}

{{define "payment_receipt"}}
<html>
<body>
  <h1>Payment received for order {{.OrderCode}}</h1>
  <p>We charged <strong>{{.Amount}}</strong> via {{.Gateway}}.</p>
  <p>Your order is now being prepared for shipment.</p>
  <p><a href="{{.ShopURL}}/orders/{{.OrderCode}}">View your order</a></p>
</body>
</html>
{{end}}

{{define "shipping_notice"}}
<html>
<body>
  <h1>Order {{.OrderCode}} is on its way</h1>
  <p>Your order shipped{{if .Carrier}} with {{.Carrier}}{{end}}.</p>
  {{if .TrackingCode}}<p>Tracking number: <strong>{{.TrackingCode}}</strong></p>{{end}}
  <p><a href="{{.ShopURL}}/orders/{{.OrderCode}}">View your order</a></p>
</body>
</html>
{{end}}
`))

type orderConfirmationData struct {
	OrderCode string
	Total     string
	ShopURL   string
}

type paymentReceiptData struct {
	OrderCode string
	Amount    string
	Gateway   string
	ShopURL   string
}

type shippingNoticeData struct {
	OrderCode    string
	Carrier      string
	TrackingCode string
	ShopURL      string
}

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}
