package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/aliases"
	"whalewatch/apps/whalewatch/internal/chains"
	"whalewatch/apps/whalewatch/internal/session"
)

// FeedHandler handles the whale feed endpoints
type FeedHandler struct {
	session *session.Session
	aliases *aliases.Service
	chain   *chains.Chain
	logger  *zap.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(session *session.Session, aliases *aliases.Service, chain *chains.Chain, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		session: session,
		aliases: aliases,
		chain:   chain,
		logger:  logger,
	}
}

// GetFeed handles GET /api/feed?limit=N
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_limit", "Limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	whales := h.session.Feed(limit)
	entries := make([]FeedEntry, 0, len(whales))
	for _, whale := range whales {
		toDisplay, toURL := "Unknown", ""
		if whale.To != "" {
			toDisplay = h.aliases.Display(whale.To)
			toURL = h.chain.AddressURL(whale.To)
		}

		entries = append(entries, FeedEntry{
			ID:          whale.ID,
			BlockNumber: whale.BlockNumber,
			TxHash:      whale.TxHash,
			From:        whale.From,
			FromDisplay: h.aliases.Display(whale.From),
			FromURL:     h.chain.AddressURL(whale.From),
			To:          whale.To,
			ToDisplay:   toDisplay,
			ToURL:       toURL,
			ValueETH:    whale.ValueETH,
			ExplorerURL: whale.ExplorerURL,
			DetectedAt:  whale.DetectedAt,
		})
	}

	writeJSONResponse(w, h.logger, http.StatusOK, FeedResponse{
		Count:   len(entries),
		Entries: entries,
	})
}

// ClearFeed handles DELETE /api/feed; it also resets the match counters
func (h *FeedHandler) ClearFeed(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	h.logger.Info("Cleared whale feed")
	w.WriteHeader(http.StatusNoContent)
}
