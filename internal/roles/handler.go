// internal/roles/handler.go
package roles

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"coolkidsnetwork/internal/membership"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type updateRoleRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type updateRoleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  int64  `json:"user_id,omitempty"`
}

// HandleUpdateRole serves PUT/PATCH /role. Authorization is the
// caller's concern: the gateway in front of this service enforces the
// edit-members gate before the request ever reaches here.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRoleResponse(w, http.StatusBadRequest, updateRoleResponse{
			Status:  "error",
			Message: "Invalid request body.",
		})
		return
	}

	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			writeRoleResponse(w, http.StatusBadRequest, updateRoleResponse{
				Status:  "error",
				Message: "Invalid email provided.",
			})
			return
		}
	}

	member, err := h.service.AssignTier(r.Context(), Identifier{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Role)

	switch {
	case errors.Is(err, membership.ErrInvalidTier):
		writeRoleResponse(w, http.StatusBadRequest, updateRoleResponse{
			Status:  "error",
			Message: "Invalid role provided.",
		})
	case errors.Is(err, membership.ErrMemberNotFound):
		writeRoleResponse(w, http.StatusNotFound, updateRoleResponse{
			Status:  "error",
			Message: "User not found.",
		})
	case err != nil:
		writeRoleResponse(w, http.StatusInternalServerError, updateRoleResponse{
			Status:  "error",
			Message: "Failed to update user role.",
		})
	default:
		writeRoleResponse(w, http.StatusOK, updateRoleResponse{
			Status:  "success",
			Message: "User role updated successfully.",
			UserID:  member.ID,
		})
	}
}

func writeRoleResponse(w http.ResponseWriter, code int, resp updateRoleResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
