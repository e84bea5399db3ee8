package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/inactivist/aqimon/pkg/logging"
	"github.com/inactivist/aqimon/pkg/model"
	"github.com/inactivist/aqimon/pkg/store"
)

// statusStub satisfies StatusSource with a fixed status.
type statusStub struct {
	status model.DeviceStatus
}

func (s statusStub) Status() model.DeviceStatus { return s.status }

func newTestServer(t *testing.T, status model.DeviceStatus) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st, statusStub{status: status}, logging.Nop()), st
}

func get(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSensorDataDefaultsToAllWindow(t *testing.T) {
	s, st := newTestServer(t, model.DeviceStatus{State: model.StateIdle})
	now := time.Now().UTC()
	old := model.Reading{T: now.Add(-48 * time.Hour).UnixMilli(), PM25: 2, PM10: 4, EPA: 8}
	fresh := model.Reading{T: now.UnixMilli(), PM25: 3, PM10: 6, EPA: 13}
	require.NoError(t, st.Append(context.Background(), old))
	require.NoError(t, st.Append(context.Background(), fresh))

	rec := get(t, s.Routes(), "/api/sensor_data")
	require.Equal(t, http.StatusOK, rec.Code)

	var series model.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Equal(t, model.Series{old, fresh}, series)
}

func TestSensorDataRespectsWindowParam(t *testing.T) {
	s, st := newTestServer(t, model.DeviceStatus{State: model.StateIdle})
	now := time.Now().UTC()
	old := model.Reading{T: now.Add(-2 * time.Hour).UnixMilli(), PM25: 2, PM10: 4, EPA: 8}
	fresh := model.Reading{T: now.UnixMilli(), PM25: 3, PM10: 6, EPA: 13}
	require.NoError(t, st.Append(context.Background(), old))
	require.NoError(t, st.Append(context.Background(), fresh))

	rec := get(t, s.Routes(), "/api/sensor_data?window=hour")
	require.Equal(t, http.StatusOK, rec.Code)

	var series model.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Equal(t, model.Series{fresh}, series)
}

func TestSensorDataRejectsUnknownWindow(t *testing.T) {
	s, _ := newTestServer(t, model.DeviceStatus{State: model.StateIdle})

	rec := get(t, s.Routes(), "/api/sensor_data?window=fortnight")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body["error"], "fortnight")
}

func TestSensorDataEmptyBodyIsArray(t *testing.T) {
	s, _ := newTestServer(t, model.DeviceStatus{State: model.StateIdle})

	rec := get(t, s.Routes(), "/api/sensor_data")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()),
		"an empty window must serialize as a JSON array")
}

func TestStatusReportsIdleWire(t *testing.T) {
	s, _ := newTestServer(t, model.DeviceStatus{State: model.StateIdle})

	rec := get(t, s.Routes(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"reader_status":"IDLE","reader_exception":null}`, rec.Body.String())
}

func TestStatusReportsFailureWire(t *testing.T) {
	s, _ := newTestServer(t, model.DeviceStatus{
		State:         model.StateFailing,
		LastException: "serial port vanished",
	})

	rec := get(t, s.Routes(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"reader_status":"ERRORING","reader_exception":"serial port vanished"}`,
		rec.Body.String())
}

func TestHealthzReportsVitals(t *testing.T) {
	s, _ := newTestServer(t, model.DeviceStatus{State: model.StateIdle})

	rec := get(t, s.Routes(), "/api/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Contains(t, body, "uptime_seconds")
}

func TestLiveStreamsAppendedReadings(t *testing.T) {
	s, st := newTestServer(t, model.DeviceStatus{State: model.StateIdle})
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	want := model.Reading{T: time.Now().UnixMilli(), PM25: 9, PM10: 18, EPA: 38}
	require.NoError(t, st.Append(context.Background(), want))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got model.Reading
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, want, got)
}
