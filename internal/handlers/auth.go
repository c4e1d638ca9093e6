package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/packlane/wmsgo/internal/models"
	"github.com/packlane/wmsgo/internal/utils"
)

// login authenticates an operator and returns a bearer token
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.UserAuth
	if err := r.db.Where("username = ? AND is_active = true", body.Username).First(&user).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !utils.CheckPasswordHash(body.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(&user, r.cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	now := time.Now().UTC()
	r.db.Model(&user).Update("last_login", now)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
