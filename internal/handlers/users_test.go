package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reelshelf/internal/auth"
	"reelshelf/internal/types"
)

func TestUpdateName(t *testing.T) {
	db := openTestDB(t)
	h := NewUserHandler(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")

	rec := serve("PATCH /api/user/update-name", h.UpdateName,
		newRequest(http.MethodPatch, "/api/user/update-name", `{"name": "  Ada  "}`, user))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated types.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Ada", *updated.Name)

	rec = serve("GET /api/user/me", h.GetCurrentUser, newRequest(http.MethodGet, "/api/user/me", "", user))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ada"`)
}

func TestUpdateNameValidation(t *testing.T) {
	db := openTestDB(t)
	h := NewUserHandler(db, zap.NewNop())
	user := createUser(t, db, "a@example.com")

	for _, body := range []string{
		`{"name": ""}`,
		`{"name": "   "}`,
		`{"name": "` + strings.Repeat("x", 51) + `"}`,
		`not json`,
	} {
		rec := serve("PATCH /api/user/update-name", h.UpdateName,
			newRequest(http.MethodPatch, "/api/user/update-name", body, user))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := serve("PATCH /api/user/update-name", h.UpdateName,
		newRequest(http.MethodPatch, "/api/user/update-name", `{"name": "`+strings.Repeat("x", 50)+`"}`, user))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCurrentUserUnknown(t *testing.T) {
	db := openTestDB(t)
	h := NewUserHandler(db, zap.NewNop())

	rec := serve("GET /api/user/me", h.GetCurrentUser,
		newRequest(http.MethodGet, "/api/user/me", "", &auth.User{ID: "missing"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
