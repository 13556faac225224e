package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/aliases"
)

// AliasHandler handles alias-related API endpoints
type AliasHandler struct {
	aliases *aliases.Service
	logger  *zap.Logger
}

// NewAliasHandler creates a new AliasHandler
func NewAliasHandler(aliases *aliases.Service, logger *zap.Logger) *AliasHandler {
	return &AliasHandler{aliases: aliases, logger: logger}
}

// ListAliases handles GET /api/aliases
func (h *AliasHandler) ListAliases(w http.ResponseWriter, r *http.Request) {
	all := h.aliases.All()
	response := make([]AliasResponse, 0, len(all))
	for _, alias := range all {
		response = append(response, AliasResponse{Address: alias.Address, Alias: alias.Name})
	}

	writeJSONResponse(w, h.logger, http.StatusOK, response)
}

// SetAlias handles PUT /api/aliases/{address}. An empty alias removes the entry.
func (h *AliasHandler) SetAlias(w http.ResponseWriter, r *http.Request) {
	address, ok := h.addressFromPath(w, r)
	if !ok {
		return
	}

	var req AliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	if err := h.aliases.Set(address, req.Alias); err != nil {
		if errors.Is(err, aliases.ErrAliasTooLong) {
			writeErrorResponse(w, h.logger, http.StatusBadRequest, "alias_too_long", err.Error())
			return
		}
		h.logger.Error("Failed to set alias", zap.String("address", address), zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, "database_error", "Failed to save alias")
		return
	}

	alias, _ := h.aliases.Get(address)
	writeJSONResponse(w, h.logger, http.StatusOK, AliasResponse{Address: address, Alias: alias})
}

// DeleteAlias handles DELETE /api/aliases/{address}
func (h *AliasHandler) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	address, ok := h.addressFromPath(w, r)
	if !ok {
		return
	}

	if err := h.aliases.Delete(address); err != nil {
		h.logger.Error("Failed to delete alias", zap.String("address", address), zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, "database_error", "Failed to delete alias")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AliasHandler) addressFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := mux.Vars(r)["address"]

	if address == "" {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "missing_address", "Address is required")
		return "", false
	}

	if !common.IsHexAddress(address) {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_address", "Invalid Ethereum address format")
		return "", false
	}

	return strings.ToLower(address), true
}
