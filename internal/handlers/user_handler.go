package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"vyruchaiBack/internal/models"
	"vyruchaiBack/internal/services"
	"vyruchaiBack/utils"
)

const maxAvatarSize = 5 << 20

type UserHandler struct {
	UserService *services.UserService
	Storage     *utils.Storage
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.UserService.SignUp(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.UserService.SignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *UserHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.UserService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *UserHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.LogOut(r.Context(), callerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the caller's own profile, contacts included.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetProfile(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetUserProfile is the public view of another user's profile.
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.GetPublicProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	user.ID = callerID(r)

	updated, err := h.UserService.UpdateProfile(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.UserService.UpdatePassword(r.Context(), callerID(r), req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar stores the multipart image in S3 and saves its URL.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		http.Error(w, "File storage is not available", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, "Missing avatar file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarSize))
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	name := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(header.Filename))
	url, err := h.Storage.UploadFile(data, name, "avatars")
	if err != nil {
		http.Error(w, "Failed to upload file", http.StatusInternalServerError)
		return
	}

	if err := h.UserService.UpdateAvatar(r.Context(), callerID(r), &url); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar_path": url})
}
