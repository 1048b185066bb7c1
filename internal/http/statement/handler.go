package statement

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/report"
)

type Handler struct {
	svc         *reconcile.Service
	uploadLimit int64
}

func NewHandler(svc *reconcile.Service, uploadLimit int64) *Handler {
	if uploadLimit <= 0 {
		uploadLimit = 10 << 20
	}

	return &Handler{svc: svc, uploadLimit: uploadLimit}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
	r.Get("/", h.view)
	r.Delete("/", h.discard)
	r.Post("/refresh", h.refresh)
	r.Get("/report", h.report)

	r.Route("/movements/{id}", func(r chi.Router) {
		r.Post("/reconcile", h.reconcile)
		r.Post("/create", h.create)
		r.Post("/ignore", h.ignore)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)

	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.svc.Import(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Active()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) discard(w http.ResponseWriter, _ *http.Request) {
	h.svc.Discard()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.Active()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Active()
	if err != nil {
		writeError(w, err)
		return
	}

	st := session.Statement()

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reconciliation-"+st.AccountNumber+".csv"))

		if err := report.WriteCSV(w, session.Results()); err != nil {
			slog.Error("failed to write report", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := io.WriteString(w, report.Text(st, session.Summary(), session.Results())); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}

type reconcileRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.Reconcile(r.Context(), chi.URLParam(r, "id"), req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

type createRequest struct {
	Description string  `json:"description"`
	CostCenter  *string `json:"cost_center,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	tx, res, err := h.svc.CreateAndReconcile(r.Context(), chi.URLParam(r, "id"), reconcile.DerivedFields{
		Description: req.Description,
		CostCenter:  req.CostCenter,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{TransactionID: tx.ID, Result: toResultResponse(res)})
}

func (h *Handler) ignore(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Ignore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}
