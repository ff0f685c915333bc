package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"reelshelf/internal/services"
	"reelshelf/internal/utils"
)

const maxRowCount = 100

// RowBuilder assembles discovery rows.
type RowBuilder interface {
	Build(ctx context.Context, rowID string, minCount int) (*services.ContentRow, error)
	Rows() []services.RowConfig
}

type ContentRowHandler struct {
	rows    RowBuilder
	ratings RatingSource
	log     *zap.Logger
}

func NewContentRowHandler(rows RowBuilder, ratings RatingSource, log *zap.Logger) *ContentRowHandler {
	return &ContentRowHandler{
		rows:    rows,
		ratings: ratings,
		log:     log,
	}
}

// GetContentRow serves /api/content-rows?id=popular-tv&count=30&enrich=true.
func (h *ContentRowHandler) GetContentRow(w http.ResponseWriter, r *http.Request) {
	rowID := utils.GetQueryParam(r, "id", "")
	if rowID == "" {
		utils.RespondError(w, "id is required", http.StatusBadRequest)
		return
	}

	count, err := utils.ParseQueryInt(r, "count", 0, 1, maxRowCount)
	if err != nil {
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	row, err := h.rows.Build(r.Context(), rowID, count)
	if errors.Is(err, services.ErrUnknownRow) {
		utils.RespondError(w, "Unknown content row: "+rowID, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to build content row", zap.String("row", rowID), zap.Error(err))
		utils.RespondError(w, "Failed to fetch content row", http.StatusInternalServerError)
		return
	}

	if utils.GetQueryParamBool(r, "enrich") {
		h.ratings.Enrich(r.Context(), row.Items)
	}

	utils.RespondJSON(w, row, http.StatusOK)
}

// ListContentRows returns the configured rows so the UI can lay out the home page.
func (h *ContentRowHandler) ListContentRows(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, map[string]interface{}{
		"rows": h.rows.Rows(),
	}, http.StatusOK)
}
