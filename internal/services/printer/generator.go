package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/packlane/wmsgo/internal/models"
	"github.com/packlane/wmsgo/internal/utils"
	"github.com/skip2/go-qrcode"
)

// Layout for goods-receipt labels on A4, three columns by eight rows
const (
	pageWidth  = 210.0
	pageHeight = 297.0
	cols       = 3
	rows       = 8
	marginX    = 8.0
	marginY    = 10.0
)

// GenerateReceiptLabels renders one label per delivery note item: a QR code
// carrying the cargo marking and article number, with the human-readable
// values below. Operators stick these on the received cartons.
func GenerateReceiptLabels(note *models.DeliveryNote) ([]byte, error) {
	if len(note.Items) == 0 {
		return nil, fmt.Errorf("delivery note %d has no items", note.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	labelW := (pageWidth - 2*marginX) / float64(cols)
	labelH := (pageHeight - 2*marginY) / float64(rows)
	labelsPerPage := cols * rows

	for i, item := range note.Items {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cols
		row := indexOnPage / cols

		x := marginX + float64(col)*labelW
		y := marginY + float64(row)*labelH

		qrContent := utils.EncodeLabel(note.CargoMarking, item.ArticleNumber)
		qrPng, err := qrcode.Encode(qrContent, qrcode.Low, 256)
		if err != nil {
			return nil, err
		}

		imgName := fmt.Sprintf("qr_%d", i)
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		_ = pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		qrSize := labelH * 0.6
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}
		pdf.ImageOptions(imgName, x+(labelW-qrSize)/2, y+1, qrSize, qrSize, false, imgOptions, 0, "")

		pdf.SetXY(x, y+labelH-9)
		pdf.SetFontSize(8)
		pdf.CellFormat(labelW, 4, item.ArticleNumber, "", 0, "C", false, 0, "")

		pdf.SetXY(x, y+labelH-5)
		pdf.SetFontSize(6)
		pdf.CellFormat(labelW, 3, fmt.Sprintf("%s x%d", note.CargoMarking, item.QuantityExpected), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
