package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"spendwise-server/src/db"
	"spendwise-server/src/middleware"
	"spendwise-server/src/util"
)

type ExportHandler struct {
	store   db.Store
	devMode bool
}

func NewExportHandler(store db.Store, devMode bool) *ExportHandler {
	return &ExportHandler{store: store, devMode: devMode}
}

// ExportCSV streams every record of the caller as a CSV attachment,
// newest first.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		util.Error(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	expenses, err := h.store.AllExpenses(r.Context(), user.ID)
	if err != nil {
		internalError(w, h.devMode, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "spendwise_report_"+time.Now().Format("20060102")+".csv"))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Date", "Title", "Category", "Type", "Amount", "Notes"})
	for _, e := range expenses {
		writer.Write([]string{
			e.Date.Format("2006-01-02"),
			e.Title,
			e.Category,
			e.Type,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Notes,
		})
	}
}
