package handlers

import (
	"net/http"
	"time"

	"spendwise-server/src/budget"
	"spendwise-server/src/db"
	"spendwise-server/src/middleware"
	"spendwise-server/src/util"
)

type BudgetHandler struct {
	store   db.Store
	devMode bool
}

func NewBudgetHandler(store db.Store, devMode bool) *BudgetHandler {
	return &BudgetHandler{store: store, devMode: devMode}
}

type budgetReport struct {
	Categories []budget.CategoryBudget `json:"categories"`
	Health     budget.Health           `json:"health"`
}

// GetBudgets evaluates the caller's limits against actual spending,
// optionally restricted to an inclusive [startDate, endDate] period.
func (h *BudgetHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var start, end *time.Time
	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			util.Error(w, http.StatusBadRequest, "Please provide a valid date")
			return
		}
		start = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			util.Error(w, http.StatusBadRequest, "Please provide a valid date")
			return
		}
		end = &t
	}

	spending, err := h.store.CategorySpending(r.Context(), user.ID, start, end)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}

	categories, health := budget.Evaluate(user.Settings.BudgetLimits, spending)
	util.Success(w, http.StatusOK, budgetReport{Categories: categories, Health: health})
}
