package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"biometric-insights/src/config"
	"biometric-insights/src/helpers"
	"biometric-insights/src/logger"
	"biometric-insights/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	report   *models.MReport
	timeline *models.MTimeline
	err      error
	calls    int
}

func (r *fakeRunner) Refresh(ctx context.Context) (*models.MReport, *models.MTimeline, error) {
	r.calls++
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.report, r.timeline, nil
}

func sampleReport(id string) *models.MReport {
	return &models.MReport{
		ID:          id,
		GeneratedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		ReportDate:  time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Result:      models.NewRecommendationSet(),
		Text:        "PERSONALIZED HEALTH INSIGHTS & RECOMMENDATIONS",
	}
}

func sampleTimeline() *models.MTimeline {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	return &models.MTimeline{
		Base:    models.SourceReadiness,
		Columns: []string{"day", "score"},
		Fields:  []models.MColumn{{Name: "score", Source: models.SourceReadiness, Field: "score"}},
		Rows: []models.MTimelineRow{
			{Day: day, Readiness: &models.MReadinessDay{Day: day, Score: models.Float(71)}},
		},
	}
}

func newTestServer(t *testing.T, runner *fakeRunner) *ReportServer {
	t.Helper()
	s := NewReportServer(config.Default().GetModel(), runner, logger.NewNopLogger())
	go s.handleWebsockets()
	t.Cleanup(func() { s.Stop() })
	return s
}

func do(s *ReportServer, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})

	rec := do(s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "", body["latest_report"])
}

func TestReport_NotFoundBeforeFirstRun(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})

	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/report").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/report/text").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/timeline").Code)
}

func TestRefresh_PublishesReport(t *testing.T) {
	runner := &fakeRunner{report: sampleReport("r-1"), timeline: sampleTimeline()}
	s := newTestServer(t, runner)

	rec := do(s, http.MethodPost, "/api/report/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.calls)

	rec = do(s, http.MethodGet, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.MReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r-1", got.ID)

	rec = do(s, http.MethodGet, "/api/report/text")
	assert.Equal(t, "PERSONALIZED HEALTH INSIGHTS & RECOMMENDATIONS", rec.Body.String())

	rec = do(s, http.MethodGet, "/api/timeline?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "day,score\n2024-03-09,71\n", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	rec = do(s, http.MethodGet, "/api/timeline?format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.Bytes())

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/timeline?format=pdf").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/timeline").Code)
}

func TestRefresh_InsufficientData(t *testing.T) {
	s := newTestServer(t, &fakeRunner{err: &helpers.InsufficientDataError{ProfileDir: "x"}})

	rec := do(s, http.MethodPost, "/api/report/refresh")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), InsufficientDataMessage)
}

func TestRefresh_Failure(t *testing.T) {
	s := newTestServer(t, &fakeRunner{err: errors.New("boom")})

	rec := do(s, http.MethodPost, "/api/report/refresh")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/report", nil)
	req.Header.Set("Origin", "http://127.0.0.1:3000")
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://127.0.0.1:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

// -----------------------------------------------------------------------------

func readEvent(t *testing.T, conn *websocket.Conn) models.MReportEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var event models.MReportEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestWebSocket_InitialAndUpdate(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	s.Publish(sampleReport("r-1"), sampleTimeline())
	require.Eventually(t, func() bool { return len(s.broadcast) == 0 }, time.Second, 10*time.Millisecond)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readEvent(t, conn)
	assert.Equal(t, models.EventInitial, initial.Type)
	assert.Equal(t, "r-1", initial.Report.ID)
	assert.Nil(t, initial.Timeline)

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: "subscribe", IncludeTimeline: true}))
	subscribed := readEvent(t, conn)
	require.NotNil(t, subscribed.Timeline)
	assert.Len(t, subscribed.Timeline.Rows, 1)

	s.Publish(sampleReport("r-2"), sampleTimeline())
	update := readEvent(t, conn)
	assert.Equal(t, models.EventUpdate, update.Type)
	assert.Equal(t, "r-2", update.Report.ID)
	assert.NotNil(t, update.Timeline)
}

func TestWebSocket_RefreshCommand(t *testing.T) {
	runner := &fakeRunner{report: sampleReport("r-9"), timeline: sampleTimeline()}
	s := newTestServer(t, runner)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: "refresh"}))
	update := readEvent(t, conn)
	assert.Equal(t, models.EventUpdate, update.Type)
	assert.Equal(t, "r-9", update.Report.ID)
}

func TestWebSocket_SubscribeAfterDisconnectIsIgnored(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	s.Publish(sampleReport("r-1"), sampleTimeline())
	require.Eventually(t, func() bool { return len(s.broadcast) == 0 }, time.Second, 10*time.Millisecond)

	// A client the hub already dropped has a closed send channel.
	gone := &Client{hub: s, send: make(chan *models.MReportEvent, 1)}
	close(gone.send)

	subscribe := []byte(`{"command":"subscribe","include_timeline":true}`)
	s.HandleClientMessage(gone, subscribe)
	// The hub only takes the second request once the first is handled.
	s.HandleClientMessage(gone, subscribe)

	_, open := <-gone.send
	assert.False(t, open)
	assert.True(t, gone.includeTimeline.Load())
}
