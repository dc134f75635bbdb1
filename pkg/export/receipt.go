package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt holds the fields printed on a ticket purchase receipt.
type Receipt struct {
	TicketID    int64
	EventTitle  string
	EventDate   string
	Venue       string
	Quantity    int
	UnitPrice   float64
	TotalAmount float64
	Method      string
	Reference   string
	PurchasedAt time.Time
	BuyerName   string
	BuyerEmail  string
}

// ReceiptRenderer renders ticket receipts as PDF documents.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render produces the receipt PDF bytes.
func (r *ReceiptRenderer) Render(rc Receipt) ([]byte, error) {
	if rc.EventTitle == "" {
		return nil, fmt.Errorf("receipt requires an event title")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "TICKET RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Receipt #%d", rc.TicketID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, rc.PurchasedAt.Format("2 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Event", rc.EventTitle},
		{"Date", rc.EventDate},
		{"Venue", rc.Venue},
		{"Buyer", fmt.Sprintf("%s <%s>", rc.BuyerName, rc.BuyerEmail)},
		{"Quantity", fmt.Sprintf("%d", rc.Quantity)},
		{"Unit price", fmt.Sprintf("Rs. %.2f", rc.UnitPrice)},
		{"Payment method", rc.Method},
		{"Reference", rc.Reference},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(135, 8, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(45, 10, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(135, 10, fmt.Sprintf("Rs. %.2f", rc.TotalAmount), "1", 1, "", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
