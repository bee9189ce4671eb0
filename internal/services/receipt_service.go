package services

import (
	"bytes"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/domain/models"
	"storefront/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReceiptService renders the PDF receipt of a placed order.
type ReceiptService struct {
	StoreName string
	RequestID string
}

func (s ReceiptService) Generate(order models.Order) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", fmt.Sprintf("order_id=%s", order.ID))
	return buildReceiptPDF(safe(s.StoreName, "Storefront"), order)
}

func buildReceiptPDF(storeName string, o models.Order) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(storeName)+" RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Order    : "+safe(o.ID, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date     : "+o.PlacedAt.Format("2006-01-02 15:04"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Customer : "+safe(o.Username, "guest"))
	pdf.Ln(7)
	if o.UpstreamID != 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Cart ref : #%d", o.UpstreamID))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(100, 7, "Item", "B", 0, "", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(100, 6, utils.Truncate(it.Title, 55), "", 0, "", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, utils.FormatCurrency(it.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, utils.FormatCurrency(it.LineTotal()), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	sum := o.Summary
	rows := [][2]string{
		{"Subtotal", utils.FormatCurrency(sum.Subtotal)},
		{fmt.Sprintf("Tax (%s%%)", sum.TaxRate.Shift(2).String()), utils.FormatCurrency(sum.Tax)},
		{"Shipping", shippingLabel(sum)},
	}
	if sum.Promo != nil {
		rows = append(rows, [2]string{"Discount (" + sum.Promo.Code + ")", "-" + utils.FormatCurrency(sum.Discount)})
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		pdf.CellFormat(150, 6, r[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, r[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, utils.FormatCurrency(sum.Total), "T", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("%d item(s). Thank you for shopping with us.", sum.ItemCount), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to generate receipt", Err: err}
	}

	filename := fmt.Sprintf("RECEIPT_%s_%s.pdf", o.PlacedAt.Format("20060102"), utils.SafeFilenamePart(o.ID))
	return buf.Bytes(), filename, nil
}

func shippingLabel(sum models.Summary) string {
	if sum.Shipping.IsZero() {
		return "FREE"
	}
	return utils.FormatCurrency(sum.Shipping)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
