// internal/directory/handler.go
package directory

import (
	"encoding/json"
	"net/http"
	"strconv"

	"coolkidsnetwork/internal/membership"
)

// viewerHeader carries the authenticated member ID, set by the host
// identity layer in front of this service.
const viewerHeader = "X-Member-ID"

type Handler struct {
	service Service
	members membership.Service
}

func NewHandler(service Service, members membership.Service) *Handler {
	return &Handler{service: service, members: members}
}

// view is the full directory page for one viewer: their own record plus
// the page of other members their tier lets them see.
type view struct {
	Self   *Entry `json:"self,omitempty"`
	Others *Page  `json:"others,omitempty"`
}

func (h *Handler) HandleDirectory(w http.ResponseWriter, r *http.Request) {
	viewerID, err := strconv.ParseInt(r.Header.Get(viewerHeader), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid viewer identity", http.StatusUnauthorized)
		return
	}

	viewer, err := h.members.GetMember(r.Context(), viewerID)
	if err != nil {
		http.Error(w, "unknown viewer", http.StatusUnauthorized)
		return
	}

	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page_num"))

	resp := view{}

	if ownFields := VisibleFields(viewer.Tier, true); len(ownFields) > 0 {
		self := entryFor(viewer, ownFields)
		resp.Self = &self
	}

	// The capability gate lives here; the query service assumes it.
	if viewer.Tier.Capabilities().ViewOthers {
		others, err := h.service.ViewOthers(r.Context(), viewer, pageNum)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Others = others
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
