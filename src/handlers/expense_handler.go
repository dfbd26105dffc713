package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"spendwise-server/src/db"
	"spendwise-server/src/middleware"
	"spendwise-server/src/models"
	"spendwise-server/src/util"
)

type ExpenseHandler struct {
	store   db.Store
	cache   *db.Cache
	devMode bool
}

func NewExpenseHandler(store db.Store, cache *db.Cache, devMode bool) *ExpenseHandler {
	return &ExpenseHandler{store: store, cache: cache, devMode: devMode}
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	q := r.URL.Query()
	filter := db.ExpenseFilter{
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Title:    q.Get("title"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	if v := q.Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			util.Error(w, http.StatusBadRequest, "Please provide a valid date")
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			util.Error(w, http.StatusBadRequest, "Please provide a valid date")
			return
		}
		filter.EndDate = &t
	}
	if filter.Type != "" && !models.ValidType(filter.Type) {
		util.Error(w, http.StatusBadRequest, "Invalid type")
		return
	}

	expenses, meta, err := h.store.ListExpenses(r.Context(), user.ID, filter)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}
	util.SuccessList(w, expenses, meta)
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	expense, err := h.store.GetExpense(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.Error(w, http.StatusNotFound, "Expense not found or not authorized")
			return
		}
		internalError(w, h.devMode, err)
		return
	}
	util.Success(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req struct {
		Title    string  `json:"title"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Date     string  `json:"date"`
		Type     string  `json:"type"`
		Notes    string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense := &models.Expense{
		UserID:   user.ID,
		Title:    strings.TrimSpace(req.Title),
		Amount:   req.Amount,
		Category: req.Category,
		Type:     req.Type,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			util.Error(w, http.StatusBadRequest, "Please provide a valid date")
			return
		}
		expense.Date = date
	}
	if msg := validateExpense(expense); msg != "" {
		util.Error(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.CreateExpense(r.Context(), expense); err != nil {
		internalError(w, h.devMode, err)
		return
	}
	h.cache.Invalidate(user.ID)

	slog.Info("expense created", "user_id", user.ID, "expense_id", expense.ID, "category", expense.Category)
	util.Success(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	var req struct {
		Title    *string  `json:"title"`
		Amount   *float64 `json:"amount"`
		Category *string  `json:"category"`
		Date     *string  `json:"date"`
		Type     *string  `json:"type"`
		Notes    *string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Fetch first so ownership is checked and untouched fields keep
	// their values; the write re-verifies ownership at the store.
	expense, err := h.store.GetExpense(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.Error(w, http.StatusNotFound, "Expense not found or not authorized")
			return
		}
		internalError(w, h.devMode, err)
		return
	}

	if req.Title != nil {
		expense.Title = strings.TrimSpace(*req.Title)
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Type != nil {
		expense.Type = *req.Type
	}
	if req.Notes != nil {
		expense.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			util.Error(w, http.StatusBadRequest, "Please provide a valid date")
			return
		}
		expense.Date = date
	}
	if msg := validateExpense(expense); msg != "" {
		util.Error(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.UpdateExpense(r.Context(), expense); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.Error(w, http.StatusNotFound, "Expense not found or not authorized")
			return
		}
		internalError(w, h.devMode, err)
		return
	}
	h.cache.Invalidate(user.ID)

	util.Success(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteExpense(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			util.Error(w, http.StatusNotFound, "Expense not found or not authorized")
			return
		}
		internalError(w, h.devMode, err)
		return
	}
	h.cache.Invalidate(user.ID)

	slog.Info("expense deleted", "user_id", user.ID, "expense_id", id)
	util.Success(w, http.StatusOK, map[string]string{"message": "Expense removed successfully"})
}

func (h *ExpenseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if stats, ok := h.cache.GetStats(user.ID); ok {
		util.Success(w, http.StatusOK, stats)
		return
	}

	stats, err := h.store.GetStats(r.Context(), user.ID)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}
	h.cache.SetStats(user.ID, stats)
	util.Success(w, http.StatusOK, stats)
}

func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if summary, ok := h.cache.GetSummary(user.ID); ok {
		util.Success(w, http.StatusOK, summary)
		return
	}

	summary, err := h.store.GetMonthlySummary(r.Context(), user.ID)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}
	h.cache.SetSummary(user.ID, summary)
	util.Success(w, http.StatusOK, summary)
}

// expenseID validates the path parameter before it reaches the store.
func expenseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		util.Error(w, http.StatusBadRequest, "Invalid expense ID format")
		return "", false
	}
	return id, true
}

// validateExpense returns the first failing field's message, matching
// the order of the request validators.
func validateExpense(e *models.Expense) string {
	if e.Title == "" {
		return "Title is required"
	}
	if e.Amount <= 0 {
		return "Amount must be greater than 0"
	}
	if e.Category == "" {
		return "Category is required"
	}
	if !models.ValidCategory(e.Category) {
		return "Invalid category"
	}
	if e.Type != "" && !models.ValidType(e.Type) {
		return "Invalid type"
	}
	return ""
}
