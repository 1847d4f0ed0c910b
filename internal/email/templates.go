package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/money"
)

var customerTypeLabels = map[string]string{
	"individual":      "Физическое лицо",
	"company":         "Юридическое лицо",
	"sole_proprietor": "Индивидуальный предприниматель",
}

// NewOrderSubject is the subject line of the staff notification.
func NewOrderSubject(o order.Order) string {
	return fmt.Sprintf("Новый заказ №%d на %s", o.ID, money.FormatRub(o.TotalAmount))
}

// BuildNewOrderBody renders the HTML summary staff receive for a new order.
func BuildNewOrderBody(e order.OrderSubmitted) string {
	o := e.Order

	var itemsHTML strings.Builder
	for _, item := range o.Items {
		name := item.ProductName
		if name == "" {
			name = fmt.Sprintf("Товар #%d", item.ProductID)
		}
		fmt.Fprintf(&itemsHTML, `<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d уп.</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d шт.</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>
`,
			html.EscapeString(name),
			item.QuantityPacks,
			item.QuantityPieces,
			money.RoundPrice(item.PricePerUnit)+money.CurrencySign,
			money.FormatRub(item.Subtotal),
		)
	}

	var customer strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&customer, "\t\t\t<tr><td style=\"padding: 4px 12px 4px 0; color: #666;\">%s</td><td>%s</td></tr>\n",
			label, html.EscapeString(value))
	}
	row("Клиент", o.CustomerName)
	row("Тип клиента", customerTypeLabels[e.CustomerType])
	row("Организация", o.Organization())
	row("Телефон", o.CustomerPhone)
	if o.TelegramUserID != 0 {
		row("Telegram ID", fmt.Sprintf("%d", o.TelegramUserID))
	}
	row("Комментарий", e.Comment)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.5; color: #333; max-width: 640px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px; margin: 0 0 16px;">Новый заказ №%d</h1>
	<p style="margin: 0 0 16px; color: #666;">Статус: %s</p>

	<table style="border-collapse: collapse; margin-bottom: 24px;">
%s	</table>

	<table style="width: 100%%; border-collapse: collapse;">
		<thead>
			<tr style="background: #f5f5f5;">
				<th style="padding: 8px; text-align: left;">Товар</th>
				<th style="padding: 8px; text-align: center;">Упаковок</th>
				<th style="padding: 8px; text-align: center;">Штук</th>
				<th style="padding: 8px; text-align: right;">Цена за шт.</th>
				<th style="padding: 8px; text-align: right;">Сумма</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
	</table>

	<p style="text-align: right; font-size: 18px; margin-top: 16px;">
		Всего штук: %d<br>
		<strong>Итого: %s</strong>
	</p>
</body>
</html>`,
		o.ID,
		html.EscapeString(statusLabel(o.Status)),
		customer.String(),
		itemsHTML.String(),
		o.PiecesTotal(),
		money.FormatRub(o.TotalAmount),
	)
}

func statusLabel(s order.Status) string {
	if s == "" {
		return order.StatusNew.Label()
	}
	return s.Label()
}
