package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/packlane/wmsgo/internal/services/sellus"
)

// syncProductStock triggers the stock reconciliation workflow for one product
func (r *Router) syncProductStock(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	productID, err := strconv.ParseUint(vars["productId"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	result, err := r.engine.Stock.ReconcileStock(req.Context(), uint(productID))
	if err != nil {
		// Terminal failures are queued for retry; the caller still gets a
		// structured answer, not a 500
		status := http.StatusBadGateway
		if errors.Is(err, sellus.ErrMissingArticleRef) || errors.Is(err, sellus.ErrArticleNotFound) {
			status = http.StatusConflict
		}
		respondJSON(w, status, map[string]interface{}{
			"status":  sellus.OutcomeError,
			"message": err.Error(),
			"queued":  true,
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// retryFailedSyncs runs one retry coordinator pass on demand
func (r *Router) retryFailedSyncs(w http.ResponseWriter, req *http.Request) {
	limit := r.cfg.Sellus.RetryBatch
	if v := req.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	report, err := r.engine.Retry.RetryUnresolved(req.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// resolveAllPendingIDs runs the batch identifier resolution
func (r *Router) resolveAllPendingIDs(w http.ResponseWriter, req *http.Request) {
	report, err := r.engine.Resolver.ResolveAllPending(req.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// checkOffDeliveryItem marks a delivery note item checked and triggers the
// receipt workflows
func (r *Router) checkOffDeliveryItem(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	itemID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body struct {
		Checked bool `json:"checked"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := r.engine.CheckOffDeliveryItem(req.Context(), uint(itemID), body.Checked)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}
