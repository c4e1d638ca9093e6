package vision

import "context"

// ExtractedItem is one line read off a paper delivery note
type ExtractedItem struct {
	ArticleNumber string `json:"articleNumber"`
	OrderNumber   string `json:"orderNumber"`
	Description   string `json:"description"`
	Quantity      int    `json:"quantity"`
}

// ExtractedNote is the structured result of reading a delivery note photo.
// Extractor output is untrusted input and gets the same validation as manual
// entry.
type ExtractedNote struct {
	DeliveryNoteNumber string          `json:"deliveryNoteNumber"`
	CargoMarking       string          `json:"cargoMarking"`
	Items              []ExtractedItem `json:"items"`
}

// Extractor reads structured fields from a delivery note image
type Extractor interface {
	ExtractDeliveryNote(ctx context.Context, image []byte, mimeType string) (*ExtractedNote, error)
}
