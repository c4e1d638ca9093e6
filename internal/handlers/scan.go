package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/packlane/wmsgo/internal/utils"
	"gorm.io/gorm"
)

// ScanRequest is a scanned receipt label
type ScanRequest struct {
	Code string `json:"code"`
	// Check immediately runs the check-off workflows instead of just
	// returning the matched item
	Check bool `json:"check"`
}

// scanLabel resolves a scanned receipt label to its delivery note item. With
// check=true the item is checked off in the same request, which is the normal
// scanner flow: one scan per carton, no further taps.
func (r *Router) scanLabel(w http.ResponseWriter, req *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	label, err := utils.DecodeLabel(body.Code)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Not a receipt label: "+err.Error())
		return
	}

	item, err := r.notes.FindItemByLabel(req.Context(), label.CargoMarking, label.ArticleNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "No delivery note item matches this label")
			return
		}
		respondError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	if !body.Check {
		respondJSON(w, http.StatusOK, item)
		return
	}

	result, err := r.engine.CheckOffDeliveryItem(req.Context(), item.ID, true)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}
