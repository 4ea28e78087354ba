package handlers

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
)

// Logout is local: tokens are stateless and the client discards its copy.
func Logout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.Message{Message: "Déconnexion réussie"})
}
