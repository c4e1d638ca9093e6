package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/packlane/wmsgo/internal/models"
	"github.com/packlane/wmsgo/internal/services/printer"
	"gorm.io/datatypes"
)

const maxUploadBytes = 10 << 20 // 10 MB per note photo

// createDeliveryNote accepts a delivery note photo, runs the vision
// extraction and persists the note with its items. The extraction result is
// treated like manual entry: items without an article number are dropped.
func (r *Router) createDeliveryNote(w http.ResponseWriter, req *http.Request) {
	if r.extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "vision extraction not configured")
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart form with an image file")
		return
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	extracted, err := r.extractor.ExtractDeliveryNote(req.Context(), image, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, http.StatusBadGateway, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	note := &models.DeliveryNote{
		DeliveryNoteNumber: extracted.DeliveryNoteNumber,
		CargoMarking:       extracted.CargoMarking,
		Source:             "vision",
	}
	for _, item := range extracted.Items {
		orderNumber := item.OrderNumber
		if orderNumber == "" {
			orderNumber = extracted.CargoMarking
		}
		note.Items = append(note.Items, models.DeliveryNoteItem{
			ArticleNumber:    item.ArticleNumber,
			OrderNumber:      orderNumber,
			Description:      item.Description,
			QuantityExpected: item.Quantity,
		})
	}
	if raw, err := jsonMarshal(extracted); err == nil {
		note.RawExtraction = raw
	}

	if err := r.notes.CreateNote(req.Context(), note); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// listDeliveryNotes returns recent delivery notes with their items
func (r *Router) listDeliveryNotes(w http.ResponseWriter, req *http.Request) {
	limit := 50
	if v := req.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	notes, err := r.notes.ListNotes(req.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(notes),
		"notes": notes,
	})
}

// getDeliveryNote returns one note with items
func (r *Router) getDeliveryNote(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	note, err := r.notes.GetNote(req.Context(), uint(id))
	if err != nil {
		respondError(w, http.StatusNotFound, "delivery note not found")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// deliveryNoteLabels renders the goods-receipt label PDF for a note
func (r *Router) deliveryNoteLabels(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	note, err := r.notes.GetNote(req.Context(), uint(id))
	if err != nil {
		respondError(w, http.StatusNotFound, "delivery note not found")
		return
	}

	pdf, err := printer.GenerateReceiptLabels(note)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="note-%d-labels.pdf"`, note.ID))
	w.Write(pdf)
}

func jsonMarshal(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
