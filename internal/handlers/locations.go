package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/packlane/wmsgo/internal/models"
)

// listLocations returns the top-level locations with their children
func (r *Router) listLocations(w http.ResponseWriter, req *http.Request) {
	var locations []models.StockLocation
	err := r.db.Where("parent_id IS NULL").Preload("Children").Find(&locations).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}
	respondJSON(w, http.StatusOK, locations)
}

// locationStock returns the inventory records sitting on one location
func (r *Router) locationStock(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	var location models.StockLocation
	if err := r.db.First(&location, uint(id)).Error; err != nil {
		respondError(w, http.StatusNotFound, "Location not found")
		return
	}

	var records []models.InventoryRecord
	err = r.db.Where("location_id = ?", uint(id)).Preload("Product").Find(&records).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch inventory")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"location":  location,
		"inventory": records,
	})
}
