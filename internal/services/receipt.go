package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"storefront-service/internal/models"
)

// GenerateReceipt renders an order as a one-page PDF the customer can forward
// when confirming the order out of band
func GenerateReceipt(order models.Order, shop ShopContact) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	addReceiptHeader(m, order, shop)
	addReceiptCustomer(m, order)
	addReceiptItems(m, order)
	addReceiptFooter(m, shop)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addReceiptHeader(m core.Maroto, order models.Order, shop ShopContact) {
	m.AddRow(25,
		col.New(6).Add(
			text.New(shop.Name, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("ORDINE", props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("# %s", order.ID), props.Text{
				Size:  8,
				Top:   9,
				Align: align.Right,
			}),
			text.New(order.CreatedAt.Format("02 Jan 2006 15:04"), props.Text{
				Size:  9,
				Top:   14,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func addReceiptCustomer(m core.Maroto, order models.Order) {
	customer := order.CustomerInfo()

	m.AddRow(8,
		col.New(12).Add(text.New("CLIENTE", props.Text{Size: 10, Style: fontstyle.Bold})),
	)
	m.AddRow(6, col.New(12).Add(text.New(fmt.Sprintf("Nome: %s", customer.Name), props.Text{Size: 10})))
	m.AddRow(6, col.New(12).Add(text.New(fmt.Sprintf("Telefono: %s", customer.Phone), props.Text{Size: 10})))
	if customer.Email != "" {
		m.AddRow(6, col.New(12).Add(text.New(fmt.Sprintf("Email: %s", customer.Email), props.Text{Size: 10})))
	}
	if customer.Message != "" {
		m.AddRow(12, col.New(12).Add(text.New(fmt.Sprintf("Note: %s", customer.Message), props.Text{Size: 9})))
	}
	m.AddRow(5, line.NewCol(12))
}

func addReceiptItems(m core.Maroto, order models.Order) {
	header := props.Text{Size: 9, Style: fontstyle.Bold}
	m.AddRow(8,
		col.New(6).Add(text.New("Articolo", header)),
		col.New(2).Add(text.New("Qta", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center})),
		col.New(2).Add(text.New("Prezzo", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New("Totale", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range order.ItemList() {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		m.AddRow(7,
			col.New(6).Add(text.New(item.Name, props.Text{Size: 9})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Center})),
			col.New(2).Add(text.New(formatEUR(item.Price), props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(formatEUR(lineTotal), props.Text{Size: 9, Align: align.Right})),
		)
	}

	m.AddRow(3, line.NewCol(12))
	m.AddRow(8,
		col.New(8),
		col.New(2).Add(text.New("Totale:", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New(formatEUR(order.Total), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right})),
	)
}

func addReceiptFooter(m core.Maroto, shop ShopContact) {
	contact := "Grazie per il tuo ordine! Ti contatteremo a breve per confermarlo."
	if shop.WhatsAppPhone != "" {
		contact = fmt.Sprintf("%s WhatsApp: %s", contact, shop.WhatsAppPhone)
	}
	m.AddRow(15,
		col.New(12).Add(text.New(contact, props.Text{Size: 9, Top: 6, Align: align.Center})),
	)
}

func formatEUR(amount decimal.Decimal) string {
	return "EUR " + amount.StringFixed(2)
}
