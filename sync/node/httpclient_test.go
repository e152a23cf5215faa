package node

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/sync/host"
)

func TestHostClientRegister(t *testing.T) {
	nodeID := id.NewAppID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/nodes", r.URL.Path)
		_ = json.NewEncoder(w).Encode(nodeID.String())
	}))
	defer srv.Close()

	client := NewHostClient(srv.URL, id.AppID{})
	got, err := client.Register(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, nodeID, got)
}

func TestHostClientPushPermanentOnConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("conflict"))
	}))
	defer srv.Close()

	client := NewHostClient(srv.URL, id.NewAppID())
	err := client.Push(context.TODO(), host.NodeChanges{})
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
}

func TestHostClientRetriesTransientFailure(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(struct {
			LastEventDate *string `json:"last_event_date"`
		}{})
	}))
	defer srv.Close()

	client := NewHostClient(srv.URL, id.NewAppID())
	_, err := client.Guide(context.TODO())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(3))
}
