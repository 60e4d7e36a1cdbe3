// internal/directory/handler_test.go
package directory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coolkidsnetwork/internal/membership"
	"coolkidsnetwork/internal/storage"
)

func newDirectoryHandler(store *storage.MemoryStore) *Handler {
	members := membership.NewService(store, storage.NewMemoryEventLog(), nil)
	return NewHandler(NewService(store), members)
}

func getDirectory(t *testing.T, h *Handler, viewerID int64, pageNum string) (*httptest.ResponseRecorder, view) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/directory?page_num="+pageNum, nil)
	if viewerID > 0 {
		req.Header.Set(viewerHeader, strconv.FormatInt(viewerID, 10))
	}
	rec := httptest.NewRecorder()
	h.HandleDirectory(rec, req)

	var resp view
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}
	return rec, resp
}

func TestHandleDirectoryCoolKidSeesOnlySelf(t *testing.T) {
	store := storage.NewMemoryStore()
	viewer := seedMember(t, store, "a@x.com", "Alex", "Kim", "Spain", membership.TierCoolKid)
	seedMember(t, store, "b@x.com", "Bob", "Builder", "France", membership.TierCoolerKid)

	rec, resp := getDirectory(t, newDirectoryHandler(store), viewer.ID, "1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Self)
	assert.Equal(t, "Alex", resp.Self.FirstName)
	assert.Equal(t, "a@x.com", resp.Self.Email)
	assert.Equal(t, string(membership.TierCoolKid), resp.Self.Tier)
	assert.Nil(t, resp.Others, "cool_kid lacks the view-others capability")
}

func TestHandleDirectoryCoolerKidSeesOthers(t *testing.T) {
	store := storage.NewMemoryStore()
	viewer := seedMember(t, store, "a@x.com", "Alex", "Kim", "Spain", membership.TierCoolerKid)
	seedMember(t, store, "b@x.com", "Bob", "Builder", "France", membership.TierCoolestKid)

	rec, resp := getDirectory(t, newDirectoryHandler(store), viewer.ID, "1")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Others)
	require.Len(t, resp.Others.Entries, 1)
	assert.Equal(t, "Bob", resp.Others.Entries[0].FirstName)
	assert.Empty(t, resp.Others.Entries[0].Email)
}

func TestHandleDirectoryRequiresViewerIdentity(t *testing.T) {
	store := storage.NewMemoryStore()
	rec, _ := getDirectory(t, newDirectoryHandler(store), 0, "1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleDirectoryUnknownViewer(t *testing.T) {
	store := storage.NewMemoryStore()
	rec, _ := getDirectory(t, newDirectoryHandler(store), 42, "1")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
