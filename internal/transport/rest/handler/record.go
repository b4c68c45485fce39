package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"formwoz/internal/service"
)

// RecordHandler serves completed interview records
type RecordHandler struct {
	interviewSvc *service.InterviewService
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(interviewSvc *service.InterviewService) *RecordHandler {
	return &RecordHandler{
		interviewSvc: interviewSvc,
	}
}

// Get handles GET /v1/records/{code}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	record, err := h.interviewSvc.Record(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
