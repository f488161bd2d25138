package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
)

// Email bodies are small enough to keep inline. They render against emailData
// so every template sees the same shape.

type emailLine struct {
	ProductName string
	VariantName string
	Quantity    int
	UnitPrice   string
	Subtotal    string
}

type emailData struct {
	SiteName    string
	SiteURL     string
	Currency    string
	OrderNumber string
	Customer    string
	Email       string
	Phone       string
	Address     string
	City        string
	Notes       string
	StatusLabel string
	Lines       []emailLine
	Total       string
	WhatsAppURL string
}

const confirmationTmpl = `<h2>Gracias por tu pedido, {{.Customer}}!</h2>
<p>Hemos recibido tu pedido <strong>{{.OrderNumber}}</strong> en {{.SiteName}}.</p>
<table border="0" cellpadding="6">
  <tr><th align="left">Producto</th><th align="left">Cantidad</th><th align="right">Subtotal</th></tr>
  {{range .Lines}}<tr>
    <td>{{.ProductName}} ({{.VariantName}})</td>
    <td>{{.Quantity}} x {{$.Currency}}{{.UnitPrice}}</td>
    <td align="right">{{$.Currency}}{{.Subtotal}}</td>
  </tr>{{end}}
  <tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>{{.Currency}}{{.Total}}</strong></td></tr>
</table>
<p>Direcci&oacute;n de entrega: {{.Address}}, {{.City}}</p>
{{if .WhatsAppURL}}<p><a href="{{.WhatsAppURL}}">Confirma tu pago por WhatsApp</a></p>{{end}}
<p>Puedes consultar el estado de tu pedido en cualquier momento con tu n&uacute;mero de pedido y tu correo en <a href="{{.SiteURL}}">{{.SiteName}}</a>.</p>`

const adminAlertTmpl = `<h2>Nuevo pedido {{.OrderNumber}}</h2>
<p><strong>Cliente:</strong> {{.Customer}} ({{.Email}}{{if .Phone}}, {{.Phone}}{{end}})</p>
<p><strong>Entrega:</strong> {{.Address}}, {{.City}}</p>
{{if .Notes}}<p><strong>Notas:</strong> {{.Notes}}</p>{{end}}
<table border="0" cellpadding="6">
  {{range .Lines}}<tr>
    <td>{{.ProductName}} ({{.VariantName}})</td>
    <td>x{{.Quantity}}</td>
    <td align="right">{{$.Currency}}{{.Subtotal}}</td>
  </tr>{{end}}
</table>
<p><strong>Total: {{.Currency}}{{.Total}}</strong></p>`

const statusUpdateTmpl = `<h2>Tu pedido {{.OrderNumber}} est&aacute; {{.StatusLabel}}</h2>
<p>Hola {{.Customer}},</p>
<p>El estado de tu pedido en {{.SiteName}} cambi&oacute; a <strong>{{.StatusLabel}}</strong>.</p>
<p>Total del pedido: {{.Currency}}{{.Total}}</p>
<p>Gracias por comprar en <a href="{{.SiteURL}}">{{.SiteName}}</a>.</p>`

var emailTemplates = template.Must(template.New("confirmation").Parse(confirmationTmpl))

func init() {
	template.Must(emailTemplates.New("admin_alert").Parse(adminAlertTmpl))
	template.Must(emailTemplates.New("status_update").Parse(statusUpdateTmpl))
}

func renderEmail(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s email: %w", name, err)
	}
	return buf.String(), nil
}

func emailDataFromOrder(store config.StoreConfig, order models.Order) emailData {
	data := emailData{
		SiteName:    store.SiteName,
		SiteURL:     store.SiteURL,
		Currency:    store.CurrencySymbol,
		OrderNumber: order.OrderNumber,
		Customer:    order.CustomerName,
		Email:       order.Email,
		Address:     order.Address,
		City:        order.City,
		Notes:       order.Notes,
		StatusLabel: order.Status.Label(),
		Total:       order.Total.StringFixed(2),
	}
	if order.Phone != nil {
		data.Phone = *order.Phone
	}
	for _, line := range order.Lines {
		data.Lines = append(data.Lines, emailLine{
			ProductName: line.ProductName,
			VariantName: line.VariantName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Subtotal:    line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).StringFixed(2),
		})
	}
	return data
}
