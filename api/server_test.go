package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/snapshot"
	synchost "github.com/ocxide/monee/sync/host"
	"github.com/ocxide/monee/store/memory"
)

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	nodes := memory.NewNodeRegistry()
	cat := memory.NewCatalogue()
	log := memory.NewHostLog()
	snapStore := memory.NewSnapshot()
	cache := snapshot.NewCache()
	audit := memory.NewAuditTrail()
	svc := synchost.New(nodes, cat, log, snapStore, cache, bus.New(16), audit, nil, nil)

	nodeID, err := svc.RegisterNode(context.Background())
	require.NoError(t, err)

	return NewRouter(NewHandler(svc), nil), nodeID.String()
}

func TestRegisterNodeReturnsID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/nodes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var id string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
	assert.Len(t, id, 4)
}

func TestGuideRejectsMissingNodeHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/sync/guide", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuideAcceptsKnownNode(t *testing.T) {
	router, nodeID := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/sync/guide", nil)
	req.Header.Set("X-Node-Id", nodeID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplyChangesRejectsUnknownNode(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(synchost.NodeChanges{})
	req := httptest.NewRequest(http.MethodPatch, "/sync", bytes.NewReader(body))
	req.Header.Set("X-Node-Id", "zzzz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplyChangesAcceptsEmptyBatch(t *testing.T) {
	router, nodeID := newTestRouter(t)

	body, _ := json.Marshal(synchost.NodeChanges{})
	req := httptest.NewRequest(http.MethodPatch, "/sync", bytes.NewReader(body))
	req.Header.Set("X-Node-Id", nodeID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
