package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/store"
)

type recordingStore struct {
	inserted []store.InsertAuditLogParams
	listErr  error
}

func (r *recordingStore) InsertAuditLog(_ context.Context, arg store.InsertAuditLogParams) (store.AuditLog, error) {
	r.inserted = append(r.inserted, arg)
	return store.AuditLog{ID: "log-1", Action: arg.Action}, nil
}

func (r *recordingStore) ListAuditLogs(context.Context, int32, int32) ([]store.AuditLog, error) {
	return nil, r.listErr
}

func TestRecordDisabledIsNoop(t *testing.T) {
	st := &recordingStore{}
	svc := Service{Store: st, Enabled: false}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings", nil)
	require.NoError(t, svc.Record(context.Background(), Actor{Kind: ActorKindUser}, "", "", "", req, 200, nil))
	assert.Empty(t, st.inserted)
}

func TestRecordDerivesActionAndResource(t *testing.T) {
	st := &recordingStore{}
	svc := Service{Store: st, Enabled: true}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings", nil)
	require.NoError(t, svc.Record(context.Background(), Actor{Kind: ActorKindUser}, "", "", "", req, 200, nil))

	require.Len(t, st.inserted, 1)
	entry := st.inserted[0]
	assert.Equal(t, "PUT /api/v1/admin/settings", entry.Action)
	assert.Equal(t, "admin.settings", entry.ResourceType)
	assert.Equal(t, string(ActorKindUser), entry.ActorKind)
	assert.Equal(t, int32(200), entry.Status)
}

func TestRecordRequiresRequest(t *testing.T) {
	svc := Service{Store: &recordingStore{}, Enabled: true}
	assert.Error(t, svc.Record(context.Background(), Actor{}, "a", "b", "", nil, 200, nil))
}

func TestMiddlewareRecordsStatusAndActor(t *testing.T) {
	st := &recordingStore{}
	recorder := HTTPRecorder{Service: &Service{Store: st, Enabled: true}}

	handler := recorder.Middleware(HTTPConfig{Action: "promo.disable", ResourceType: "promo"})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/promos/p1/enabled", nil)
	req = req.WithContext(common.WithUserID(req.Context(), "admin-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Len(t, st.inserted, 1)
	entry := st.inserted[0]
	assert.Equal(t, "promo.disable", entry.Action)
	assert.Equal(t, int32(http.StatusConflict), entry.Status)
	require.NotNil(t, entry.ActorUserID)
	assert.Equal(t, "admin-1", *entry.ActorUserID)
}

func TestMiddlewarePassesThroughWhenDisabled(t *testing.T) {
	st := &recordingStore{}
	recorder := HTTPRecorder{Service: &Service{Store: st, Enabled: false}}

	handler := recorder.Middleware(HTTPConfig{})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.inserted)
}
