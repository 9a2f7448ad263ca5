package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rocket-telemetry/dashboard/datasets"
	"github.com/rocket-telemetry/dashboard/pkg/chart"
	"github.com/rocket-telemetry/dashboard/pkg/config"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/playback"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"github.com/rocket-telemetry/dashboard/services"
)

type testServer struct {
	app      *fiber.App
	sessions services.SessionService
	layouts  services.LayoutService
	cookie   *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := customlog.NewNopLogger()

	catalog := telemetry.NewCatalog(datasets.FS, nil, logger)
	sessions := services.NewSessionService(catalog, services.SessionOptions{}, logger)
	t.Cleanup(sessions.Close)

	layouts, err := services.NewLayoutService(filepath.Join(t.TempDir(), "dashboard_layout.yaml"), logger)
	require.NoError(t, err)

	app := NewApp(AppOptions{
		Sessions:    sessions,
		Layouts:     layouts,
		Catalog:     catalog,
		Logger:      logger,
		MaxUploadMB: 1,
	})
	return &testServer{app: app, sessions: sessions, layouts: layouts}
}

// do sends a request, carrying the session cookie once one was issued.
func (s *testServer) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			s.cookie = &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	return resp
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(t, req)
}

func (s *testServer) upload(t *testing.T, filename, contentType, content string) *http.Response {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/upload", &body)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	return s.do(t, req)
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	decode(t, resp, &body)
	return body["error"]
}

const csvHeader = "date,time,lat,lon,gps_alt,alt,acc_x,acc_y,acc_z,eu_x,eu_y,eu_z,valve_state"

func flightCSV(n int) string {
	var b strings.Builder
	b.WriteString(csvHeader + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2024-06-14,12:30:%02d:000,32.99,-106.97,%d,%d,0.1,0.2,9.8,1,2,3,%d\n", i, 1400+i*10, i*10, i%2)
	}
	return b.String()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestListDatasets(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/v1/datasets")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Default  string              `json:"default"`
		Datasets []telemetry.Summary `json:"datasets"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Ideal Launch", body.Default)
	require.Len(t, body.Datasets, 2)
	assert.Equal(t, "Ideal Launch", body.Datasets[0].Name)
	assert.Equal(t, 240, body.Datasets[0].Records)
	assert.Equal(t, "Sensor Data", body.Datasets[1].Name)
	assert.Equal(t, 180, body.Datasets[1].Records)
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/v1/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, s.cookie)

	var first services.SessionInfo
	decode(t, resp, &first)
	assert.Equal(t, s.cookie.Value, first.ID)
	assert.Equal(t, "Ideal Launch", first.Dataset)
	assert.Equal(t, 240, first.Records)
	assert.Empty(t, first.Warning)

	resp = s.get(t, "/api/v1/session")
	assert.Empty(t, resp.Cookies())
	var second services.SessionInfo
	decode(t, resp, &second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, s.sessions.Count())
}

func TestEndSession(t *testing.T) {
	s := newTestServer(t)
	s.get(t, "/api/v1/session")
	oldID := s.cookie.Value

	resp := s.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err := s.sessions.Get(oldID)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	var info services.SessionInfo
	decode(t, s.get(t, "/api/v1/session"), &info)
	assert.NotEqual(t, oldID, info.ID)
}

func TestSelectDataset(t *testing.T) {
	s := newTestServer(t)

	resp := s.postJSON(t, "/api/v1/session/dataset", SelectDatasetRequest{Name: "Sensor Data"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info services.SessionInfo
	decode(t, resp, &info)
	assert.Equal(t, "Sensor Data", info.Dataset)
	assert.Equal(t, 180, info.Records)
	assert.Contains(t, info.Valves, "valve_vent")

	t.Run("unknown dataset keeps the current one", func(t *testing.T) {
		resp := s.postJSON(t, "/api/v1/session/dataset", SelectDatasetRequest{Name: "Moon Landing"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, errorBody(t, resp), "unknown dataset")

		decode(t, s.get(t, "/api/v1/session"), &info)
		assert.Equal(t, "Sensor Data", info.Dataset)
	})

	t.Run("missing name", func(t *testing.T) {
		resp := s.postJSON(t, "/api/v1/session/dataset", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUploadDataset(t *testing.T) {
	s := newTestServer(t)

	resp := s.upload(t, "flight.csv", "text/csv", flightCSV(20))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info services.SessionInfo
	decode(t, resp, &info)
	assert.Equal(t, "flight.csv", info.Dataset)
	assert.Equal(t, telemetry.SourceUpload, info.Source)
	assert.Equal(t, 20, info.Records)
	assert.Equal(t, 0, info.Playback.Index)

	tests := []struct {
		name        string
		filename    string
		contentType string
		content     string
		wantStatus  int
		wantError   string
	}{
		{"wrong extension", "flight.txt", "text/plain", flightCSV(3), http.StatusUnsupportedMediaType, "unsupported file type"},
		{"wrong content type", "flight.csv", "image/png", flightCSV(3), http.StatusUnsupportedMediaType, "unsupported file type"},
		{"missing column", "flight.csv", "text/csv", "date,time,lat\n2024-06-14,12:30:00,1\n", http.StatusBadRequest, "missing required column"},
		{"bad number", "flight.csv", "text/csv", strings.Replace(flightCSV(3), "32.99", "abc", 1), http.StatusBadRequest, "invalid value"},
		{"header only", "flight.csv", "text/csv", csvHeader + "\n", http.StatusBadRequest, "no data found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.upload(t, tt.filename, tt.contentType, tt.content)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, errorBody(t, resp), tt.wantError)

			decode(t, s.get(t, "/api/v1/session"), &info)
			assert.Equal(t, "flight.csv", info.Dataset, "failed upload must keep the previous dataset")
			assert.Equal(t, 20, info.Records)
		})
	}

	t.Run("missing file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session/upload", nil)
		resp := s.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetDashboard(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/v1/session/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d chart.Dashboard
	decode(t, resp, &d)
	assert.Equal(t, "Ideal Launch", d.Dataset)
	assert.Equal(t, 240, d.Records)
	assert.Equal(t, 0, d.Index)
	assert.Len(t, d.Panels, 4)
	assert.Len(t, d.Trajectory.Data, 3)

	t.Run("index query previews without seeking", func(t *testing.T) {
		var preview chart.Dashboard
		decode(t, s.get(t, "/api/v1/session/dashboard?index=50"), &preview)
		assert.Equal(t, 50, preview.Index)

		var info services.SessionInfo
		decode(t, s.get(t, "/api/v1/session"), &info)
		assert.Equal(t, 0, info.Playback.Index)
	})

	t.Run("index is clamped", func(t *testing.T) {
		var preview chart.Dashboard
		decode(t, s.get(t, "/api/v1/session/dashboard?index=100000"), &preview)
		assert.Equal(t, 239, preview.Index)
	})
}

func TestGetSteps(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/v1/session/steps")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var steps chart.AnimationSteps
	decode(t, resp, &steps)
	require.NotEmpty(t, steps.Trajectory)
	assert.Equal(t, chart.Step{Index: 10, Label: "500 ms"}, steps.Trajectory[0])
	assert.Len(t, steps.Panels, 30)
}

func TestGetChartPNG(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/v1/session/charts/altitude")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	resp = s.get(t, "/api/v1/session/charts/pressure")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, errorBody(t, resp), "unknown panel")

	resp = s.get(t, "/api/v1/session/charts/altitude?width=5000")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaybackRoutes(t *testing.T) {
	s := newTestServer(t)

	var state playback.State
	resp := s.postJSON(t, "/api/v1/session/playback/seek", SeekRequest{Index: 10})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &state)
	assert.Equal(t, playback.State{Index: 10, Length: 240}, state)

	decode(t, s.postJSON(t, "/api/v1/session/playback/seek", SeekRequest{Index: 100000}), &state)
	assert.Equal(t, 239, state.Index)

	decode(t, s.postJSON(t, "/api/v1/session/playback/seek", SeekRequest{Index: -4}), &state)
	assert.Equal(t, 0, state.Index)

	decode(t, s.postJSON(t, "/api/v1/session/playback/play", nil), &state)
	assert.True(t, state.Playing)

	decode(t, s.postJSON(t, "/api/v1/session/playback/pause", nil), &state)
	assert.False(t, state.Playing)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/playback/seek", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, s.do(t, req).StatusCode)
}

func TestLayoutRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/v1/config/layout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-yaml", resp.Header.Get(fiber.HeaderContentType))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "layout_id: default")

	var current config.Layout
	decode(t, s.get(t, "/api/v1/config/layout?format=json"), &current)
	assert.Equal(t, "default", current.LayoutID)

	t.Run("empty body", func(t *testing.T) {
		resp := s.do(t, httptest.NewRequest(http.MethodPut, "/api/v1/config/layout", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid layout", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/config/layout", strings.NewReader("layout_id: x\n"))
		req.Header.Set(fiber.HeaderContentType, "application/x-yaml")
		resp := s.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, errorBody(t, resp), "validation failed")
	})

	t.Run("update", func(t *testing.T) {
		layout := config.DefaultLayout()
		layout.LayoutID = "altitude-only"
		layout.Panels = layout.Panels[:1]
		data, err := yaml.Marshal(layout)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/v1/config/layout", bytes.NewReader(data))
		req.Header.Set(fiber.HeaderContentType, "application/x-yaml")
		resp := s.do(t, req)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		req = httptest.NewRequest(http.MethodGet, "/api/v1/config/layout", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
		decode(t, s.do(t, req), &current)
		assert.Equal(t, "altitude-only", current.LayoutID)

		var d chart.Dashboard
		decode(t, s.get(t, "/api/v1/session/dashboard"), &d)
		assert.Len(t, d.Panels, 1)
	})
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	require.NotNil(t, s.cookie)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, PageTitle)
	assert.Contains(t, page, "Total Records")
	assert.Contains(t, page, `<option value="Sensor Data">`)
	assert.Contains(t, page, `id="panel-valves"`)
	assert.Contains(t, page, "/ws/playback")
	assert.Contains(t, page, `id="slider" type="range" min="0" max="239" value="0"`)

	s.postJSON(t, "/api/v1/session/dataset", SelectDatasetRequest{Name: "Sensor Data"})
	resp = s.get(t, "/")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `max="179"`)
}

func TestWebSocketRouteRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/ws/playback")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

// listen serves the app on a loopback port and returns its address.
func (s *testServer) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.Shutdown() })
	return ln.Addr().String()
}

// readMessage waits for the next server message matching want.
func readMessage(t *testing.T, conn *fastws.Conn, want func(PlaybackMessage) bool) PlaybackMessage {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg PlaybackMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if want(msg) {
			return msg
		}
	}
}

func TestPlaybackWebSocket(t *testing.T) {
	if testing.Short() {
		t.Skip("opens a TCP listener")
	}
	s := newTestServer(t)
	addr := s.listen(t)

	s.get(t, "/api/v1/session")
	require.NotNil(t, s.cookie)
	header := http.Header{}
	header.Set("Cookie", s.cookie.String())

	conn, resp, err := fastws.DefaultDialer.Dial("ws://"+addr+"/ws/playback", header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	isDashboard := func(index int) func(PlaybackMessage) bool {
		return func(m PlaybackMessage) bool {
			return m.Type == MessageDashboard && m.Dashboard != nil && m.Dashboard.Index == index
		}
	}

	first := readMessage(t, conn, isDashboard(0))
	assert.Equal(t, "Ideal Launch", first.Dashboard.Dataset)
	assert.Equal(t, 240, first.State.Length)
	assert.Len(t, first.Dashboard.Panels, 4)

	require.NoError(t, conn.WriteJSON(PlaybackCommand{Action: ActionSeek, Index: 57}))
	msg := readMessage(t, conn, isDashboard(57))
	assert.Equal(t, 57, msg.State.Index)
	assert.Len(t, msg.Dashboard.Trajectory.Data, 3)

	require.NoError(t, conn.WriteJSON(PlaybackCommand{Action: ActionSeek, Index: 100000}))
	msg = readMessage(t, conn, isDashboard(239))
	assert.Equal(t, 239, msg.State.Index)

	require.NoError(t, conn.WriteJSON(PlaybackCommand{Action: "rewind"}))
	msg = readMessage(t, conn, func(m PlaybackMessage) bool { return m.Type == MessageError })
	assert.Equal(t, errUnknownAction.Error(), msg.Message)

	sess, err := s.sessions.Get(s.cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, 239, sess.Player().State().Index)

	// ending the session closes the socket
	require.True(t, s.sessions.End(sess.ID))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "socket was not closed after the session ended")
	}
}

func TestApplyCommand(t *testing.T) {
	s := newTestServer(t)
	sess, _ := s.sessions.GetOrCreate("")
	before := sess.LastSeen()

	require.NoError(t, applyCommand(sess, PlaybackCommand{Action: ActionSeek, Index: 42}))
	assert.False(t, sess.LastSeen().Before(before))
	assert.Equal(t, 42, sess.Player().State().Index)

	require.NoError(t, applyCommand(sess, PlaybackCommand{Action: ActionPlay}))
	require.NoError(t, applyCommand(sess, PlaybackCommand{Action: ActionPause}))
	assert.False(t, sess.Player().State().Playing)

	assert.ErrorIs(t, applyCommand(sess, PlaybackCommand{Action: "rewind"}), errUnknownAction)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fiber.NewError(fiber.StatusTeapot, "short and stout"), fiber.StatusTeapot},
		{fmt.Errorf("wrap: %w", telemetry.ErrUnsupportedFileType), fiber.StatusUnsupportedMediaType},
		{telemetry.ErrUnknownDataset, fiber.StatusNotFound},
		{services.ErrSessionNotFound, fiber.StatusNotFound},
		{chart.ErrUnknownPanel, fiber.StatusNotFound},
		{telemetry.ErrNoDataset, fiber.StatusConflict},
		{&telemetry.ParseError{Row: 2, Column: "alt", Value: "x"}, fiber.StatusBadRequest},
		{telemetry.ErrMissingColumn, fiber.StatusBadRequest},
		{telemetry.ErrEmptyDataset, fiber.StatusBadRequest},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForError(tt.err), tt.err.Error())
	}
}
