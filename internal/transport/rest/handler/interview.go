package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"formwoz/internal/model"
	"formwoz/internal/service"
)

// InterviewHandler handles room and message endpoints
type InterviewHandler struct {
	interviewSvc *service.InterviewService
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewSvc *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewSvc: interviewSvc,
	}
}

// MessageRequest is the request body for a respondent message
type MessageRequest struct {
	Text string `json:"text"`
}

// EditRequest is the request body for editing an earlier answer
type EditRequest struct {
	QuestionID string `json:"questionId"`
	NewValue   string `json:"newValue"`
}

// ConfirmRequest is the request body for resolving a destructive edit
type ConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// CreateRoom handles POST /v1/rooms
func (h *InterviewHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.interviewSvc.CreateRoom(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// Message handles POST /v1/rooms/{code}/messages
func (h *InterviewHandler) Message(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.interviewSvc.HandleMessage(r.Context(), code, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Status handles GET /v1/rooms/{code}/status
func (h *InterviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	result, err := h.interviewSvc.Status(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Transcript handles GET /v1/rooms/{code}/transcript
func (h *InterviewHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	messages, err := h.interviewSvc.Transcript(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// Edit handles POST /v1/rooms/{code}/edits
func (h *InterviewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	out, err := h.interviewSvc.RequestEdit(r.Context(), code, req.QuestionID, req.NewValue)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) && verr.Recoverable() {
			writeError(w, http.StatusUnprocessableEntity, verr.Message)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ConfirmEdit handles POST /v1/rooms/{code}/edits/confirm
func (h *InterviewHandler) ConfirmEdit(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.interviewSvc.ConfirmEdit(r.Context(), code, req.Confirmed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
