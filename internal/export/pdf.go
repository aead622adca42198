package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GeneratePDF renders the estimate as a proposal PDF using maroto/v2 and
// returns the raw bytes.
func GeneratePDF(data Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addProposalHeader(m, data)

	for _, section := range data.Sections {
		addSection(m, section.Header, section.Rows, &section.Subtotal)
	}
	if len(data.OptionalRows) > 0 {
		addSection(m, "Optional (quoted separately)", data.OptionalRows, nil)
	}

	addProposalSummary(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}

	return doc.GetBytes(), nil
}

func addProposalHeader(m core.Maroto, data Data) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	subtle := props.Text{
		Size:  9,
		Align: align.Left,
		Color: &props.Color{Red: 80, Green: 80, Blue: 80},
	}
	subtleRight := subtle
	subtleRight.Align = align.Right

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("Prepared for: "+data.Customer.Name, subtle)),
			col.New(6).Add(text.New("Date: "+data.GeneratedDate, subtleRight)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New(data.Customer.Address, subtle)),
			col.New(6).Add(text.New(
				fmt.Sprintf("Roof: %s squares, %s pitch", formatQty(data.TotalSquares), data.Pitch),
				subtleRight,
			)),
		),
		row.New(4),
	)
}

// addSection renders one category table: header bar, item rows, and an
// optional subtotal row.
func addSection(m core.Maroto, header string, rows []Row, subtotal *float64) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(header, props.Text{
					Size:  9,
					Style: fontstyle.Bold,
					Align: align.Left,
					Color: &props.Color{Red: 255, Green: 255, Blue: 255},
				}),
			).WithStyle(&headerCell),
		),
	)

	base := props.Text{Size: 8, Align: align.Left}
	right := base
	right.Align = align.Right

	for _, r := range rows {
		m.AddRows(
			row.New(6).Add(
				col.New(6).Add(text.New(r.Name, base)),
				col.New(2).Add(text.New(formatQty(r.Quantity)+" "+r.Unit, right)),
				col.New(2).Add(text.New(FormatUSD(r.UnitPrice), right)),
				col.New(2).Add(text.New(FormatUSD(r.Total), right)),
			),
		)
	}

	if subtotal != nil {
		bold := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
		m.AddRows(
			row.New(6).Add(
				col.New(10).Add(text.New("Subtotal", bold)),
				col.New(2).Add(text.New(FormatUSD(*subtotal), bold)),
			),
		)
	}

	m.AddRows(row.New(3))
}

func addProposalSummary(m core.Maroto, data Data) {
	m.AddRows(row.New(4))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := label

	addLine := func(name string, amount float64) {
		m.AddRows(
			row.New(7).Add(
				col.New(9).Add(text.New(name, label)).WithStyle(summaryCell),
				col.New(3).Add(text.New(FormatUSD(amount), value)).WithStyle(summaryCell),
			),
		)
	}

	addLine("Materials Allowance", data.SundriesAmount)
	addLine("Sales Tax", data.SalesTaxAmount)
	addLine("Total Investment", data.FinalPrice)
}
