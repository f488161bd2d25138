package notifications

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gardenaqua/gardenaqua-backend/pkg/config"
	"github.com/gardenaqua/gardenaqua-backend/pkg/db/models"
)

// WhatsAppLink builds a wa.me link preloaded with the order summary so the
// shopper can confirm payment over WhatsApp. Returns "" when no business
// number is configured.
func WhatsAppLink(store config.StoreConfig, order models.Order) string {
	number := strings.TrimSpace(strings.TrimPrefix(store.WhatsAppNumber, "+"))
	if number == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola! Acabo de realizar el pedido %s en %s.\n\n", order.OrderNumber, store.SiteName)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "- %s (%s) x%d = %s%s\n",
			line.ProductName, line.VariantName, line.Quantity,
			store.CurrencySymbol, line.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s%s\n", store.CurrencySymbol, order.Total.StringFixed(2))
	fmt.Fprintf(&b, "A nombre de: %s", order.CustomerName)

	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(b.String()))
}
