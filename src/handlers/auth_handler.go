package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"spendwise-server/src/auth"
	"spendwise-server/src/db"
	"spendwise-server/src/middleware"
	"spendwise-server/src/models"
	"spendwise-server/src/util"
)

type AuthHandler struct {
	store   db.Store
	tokens  *auth.TokenManager
	devMode bool
}

func NewAuthHandler(store db.Store, tokens *auth.TokenManager, devMode bool) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, devMode: devMode}
}

// authResponse is a user profile plus a freshly issued token.
type authResponse struct {
	models.User
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = util.NormalizeEmail(req.Email)

	if req.Name == "" {
		util.Error(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !util.ValidateEmail(req.Email) {
		util.Error(w, http.StatusBadRequest, "Please provide a valid email")
		return
	}
	if !util.ValidatePassword(req.Password) {
		util.Error(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Settings:     models.Settings{BudgetLimits: map[string]float64{}},
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			util.Error(w, http.StatusBadRequest, "User already exists")
			return
		}
		internalError(w, h.devMode, err)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	util.Success(w, http.StatusCreated, authResponse{User: *user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = util.NormalizeEmail(req.Email)
	if !util.ValidateEmail(req.Email) {
		util.Error(w, http.StatusBadRequest, "Please provide a valid email")
		return
	}
	if req.Password == "" {
		util.Error(w, http.StatusBadRequest, "Password is required")
		return
	}

	// Unknown email and wrong password produce the same answer so the
	// endpoint cannot be used to enumerate accounts.
	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.Error(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		internalError(w, h.devMode, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		slog.Warn("failed login attempt", "email", req.Email, "remote_addr", r.RemoteAddr)
		util.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	util.Success(w, http.StatusOK, authResponse{User: *user, Token: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	util.Success(w, http.StatusOK, user)
}

func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Settings *struct {
			BudgetLimits map[string]float64 `json:"budgetLimits"`
		} `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && *req.Email != "" {
		email := util.NormalizeEmail(*req.Email)
		if !util.ValidateEmail(email) {
			util.Error(w, http.StatusBadRequest, "Please provide a valid email")
			return
		}
		user.Email = email
	}
	if req.Password != nil && *req.Password != "" {
		if !util.ValidatePassword(*req.Password) {
			util.Error(w, http.StatusBadRequest, "Password must be at least 6 characters long")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			internalError(w, h.devMode, err)
			return
		}
		user.PasswordHash = string(hash)
	}
	if req.Settings != nil {
		// Limit keys are merged into the existing table, not swapped.
		for category, limit := range req.Settings.BudgetLimits {
			if limit < 0 {
				util.Error(w, http.StatusBadRequest, "Budget limit must be a positive number")
				return
			}
			user.Settings.BudgetLimits[category] = limit
		}
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			util.Error(w, http.StatusBadRequest, "Duplicate value entered. Please use another value.")
			return
		}
		internalError(w, h.devMode, err)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}

	util.Success(w, http.StatusOK, authResponse{User: *user, Token: token})
}
