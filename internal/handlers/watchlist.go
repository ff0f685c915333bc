package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"reelshelf/internal/auth"
	"reelshelf/internal/database"
	"reelshelf/internal/types"
	"reelshelf/internal/utils"
)

type WatchlistHandler struct {
	db  *sql.DB
	log *zap.Logger
}

func NewWatchlistHandler(db *sql.DB, log *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{db: db, log: log}
}

func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := database.ListWatchlist(r.Context(), h.db, user.ID)
	if err != nil {
		h.log.Error("failed to list watchlist", zap.String("user_id", user.ID), zap.Error(err))
		utils.RespondError(w, "Failed to get watchlist", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []types.WatchlistItem{}
	}

	utils.RespondJSON(w, items, http.StatusOK)
}

func (h *WatchlistHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.CreateWatchlistItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	_, err = database.FindWatchlistItem(r.Context(), h.db, user.ID, req.ContentID, req.MediaType)
	if err == nil {
		utils.RespondError(w, "Item already in watchlist", http.StatusConflict)
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.log.Error("failed to check watchlist", zap.String("user_id", user.ID), zap.Error(err))
		utils.RespondError(w, "Failed to add to watchlist", http.StatusInternalServerError)
		return
	}

	item, err := database.InsertWatchlistItem(r.Context(), h.db, &types.WatchlistItem{
		UserID:             user.ID,
		ContentID:          req.ContentID,
		MediaType:          req.MediaType,
		Status:             req.Status,
		LastWatchedSeason:  req.LastWatchedSeason,
		LastWatchedEpisode: req.LastWatchedEpisode,
	})
	if errors.Is(err, database.ErrDuplicateWatchlistItem) {
		utils.RespondError(w, "Item already in watchlist", http.StatusConflict)
		return
	}
	if err != nil {
		h.log.Error("failed to insert watchlist item", zap.String("user_id", user.ID), zap.Error(err))
		utils.RespondError(w, "Failed to add to watchlist", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, item, http.StatusCreated)
}

// LookupWatchlistItem answers whether a title is on the caller's watchlist.
func (h *WatchlistHandler) LookupWatchlistItem(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	contentID, err := strconv.Atoi(utils.GetQueryParam(r, "contentId", ""))
	if err != nil || contentID <= 0 {
		utils.RespondError(w, "contentId must be a positive integer", http.StatusBadRequest)
		return
	}
	mediaType := utils.GetQueryParam(r, "mediaType", "")
	if !types.ValidMediaType(mediaType) {
		utils.RespondError(w, "mediaType must be movie or tv", http.StatusBadRequest)
		return
	}

	item, err := database.FindWatchlistItem(r.Context(), h.db, user.ID, contentID, mediaType)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(w, "Item not in watchlist", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to look up watchlist item", zap.String("user_id", user.ID), zap.Error(err))
		utils.RespondError(w, "Failed to get watchlist item", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, item, http.StatusOK)
}

func (h *WatchlistHandler) UpdateWatchlistItem(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := watchlistItemID(w, r)
	if !ok {
		return
	}

	var req types.UpdateWatchlistItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Status == nil && req.LastWatchedSeason == nil && req.LastWatchedEpisode == nil {
		utils.RespondError(w, "No fields to update", http.StatusBadRequest)
		return
	}

	item, err := database.UpdateWatchlistItem(r.Context(), h.db, user.ID, id, database.WatchlistUpdate{
		Status:             req.Status,
		LastWatchedSeason:  req.LastWatchedSeason,
		LastWatchedEpisode: req.LastWatchedEpisode,
	})
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(w, "Watchlist item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to update watchlist item", zap.Int64("id", id), zap.Error(err))
		utils.RespondError(w, "Failed to update watchlist item", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, item, http.StatusOK)
}

func (h *WatchlistHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := watchlistItemID(w, r)
	if !ok {
		return
	}

	err = database.DeleteWatchlistItem(r.Context(), h.db, user.ID, id)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(w, "Watchlist item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to delete watchlist item", zap.Int64("id", id), zap.Error(err))
		utils.RespondError(w, "Failed to remove from watchlist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func watchlistItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(utils.GetPathParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondError(w, "Invalid watchlist item ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
