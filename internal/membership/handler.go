// internal/membership/handler.go
package membership

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  Service
	enroller *Worker
}

// NewHandler creates the membership HTTP handler. The enroller may be
// nil, in which case registration skips profile enrichment.
func NewHandler(service Service, enroller *Worker) *Handler {
	return &Handler{service: service, enroller: enroller}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		http.Error(w, "invalid email address", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	member, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Enrichment runs off the request path; its outcome is invisible to
	// the registering member.
	if h.enroller != nil {
		h.enroller.Enqueue(member.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(member)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	member, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	// Session issuance belongs to the host identity provider.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(member)
}

func (h *Handler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDParam(r)
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}

	member, err := h.service.GetMember(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(member)
}

func (h *Handler) HandleMemberEvents(w http.ResponseWriter, r *http.Request) {
	id, err := memberIDParam(r)
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}

	events, err := h.service.MemberEvents(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func memberIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
