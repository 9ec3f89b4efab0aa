// Package pdf renders printable documents for sales.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ReceiptLine is one sale line on the printed receipt.
type ReceiptLine struct {
	Name      string
	Qty       int
	UnitPrice string
	Amount    string
}

// ReceiptData carries everything the sale receipt needs, preformatted.
type ReceiptData struct {
	OrgName      string
	CustomerName string
	SaleID       string
	SaleDate     string
	Status       string
	Lines        []ReceiptLine
	Subtotal     string
	ShippingCost string
	Total        string
	Notes        string
}

type Provider interface {
	GenerateSaleReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type provider struct{}

func NewProvider() Provider {
	return &provider{}
}

func (p *provider) GenerateSaleReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(25,
		text.NewCol(8, data.OrgName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Sale receipt", props.Text{
			Size:  12,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt no: "+data.SaleID, props.Text{Top: 0}),
			text.New("Date: "+data.SaleDate, props.Text{Top: 4}),
			text.New("Status: "+data.Status, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Customer", props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerName, props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Lines {
		m.AddRow(12,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, data.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Shipping", props.Text{Size: 9}),
		text.NewCol(2, data.ShippingCost, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, data.Total, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	if data.Notes != "" {
		m.AddRow(15,
			text.NewCol(12, "Notes: "+data.Notes, props.Text{Size: 8, Top: 5}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
