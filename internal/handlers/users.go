package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"reelshelf/internal/auth"
	"reelshelf/internal/database"
	"reelshelf/internal/types"
	"reelshelf/internal/utils"
)

type UserHandler struct {
	db  *sql.DB
	log *zap.Logger
}

func NewUserHandler(db *sql.DB, log *zap.Logger) *UserHandler {
	return &UserHandler{db: db, log: log}
}

func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	authUser, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := database.GetUserByID(r.Context(), h.db, authUser.ID)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to get user", zap.String("user_id", authUser.ID), zap.Error(err))
		utils.RespondError(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, user, http.StatusOK)
}

// UpdateName sets the display name; it must be 1 to 50 characters once trimmed.
func (h *UserHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	authUser, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.UpdateNameRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(&req); err != nil {
		utils.RespondError(w, "Name must be between 1 and 50 characters", http.StatusBadRequest)
		return
	}

	user, err := database.UpdateUserName(r.Context(), h.db, authUser.ID, req.Name)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to update user name", zap.String("user_id", authUser.ID), zap.Error(err))
		utils.RespondError(w, "Failed to update name", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, user, http.StatusOK)
}
