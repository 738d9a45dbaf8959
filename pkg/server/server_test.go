package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kezhenxu94/after-hours/pkg/config"
	"github.com/kezhenxu94/after-hours/pkg/controller"
	"github.com/kezhenxu94/after-hours/pkg/mailbox"
	"github.com/kezhenxu94/after-hours/pkg/settings"
)

type testEventResponse struct {
	Outcome  *controller.Outcome `json:"outcome"`
	Enabled  *bool               `json:"enabled"`
	Settings *struct {
		settings.Settings
		Summary string `json:"summary"`
	} `json:"settings"`
	Actions []mailbox.Action `json:"actions"`
	Error   string           `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	manager := settings.NewManager(settings.NewMemoryBackend(nil), settings.Defaults())
	c := controller.NewDelayController(manager, config.Default(), controller.WithClock(func() time.Time {
		return time.Date(2024, time.November, 27, 10, 0, 0, 0, time.UTC)
	}))
	ts := httptest.NewServer(New(c, WithLocation(time.UTC)))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestCompose(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/events/compose", `{"now":"2024-07-05T20:00:00"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got testEventResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.Outcome)
	assert.True(t, got.Outcome.Delayed)
	assert.True(t, got.Outcome.DeliverAt.Equal(time.Date(2024, time.July, 8, 7, 0, 0, 0, time.UTC)))

	require.Len(t, got.Actions, 2)
	assert.Equal(t, mailbox.OpSetDelayDeliveryTime, got.Actions[0].Op)
	assert.True(t, got.Actions[0].DeliveryTime.Equal(time.Date(2024, time.July, 8, 7, 0, 0, 0, time.UTC)))
	assert.Equal(t, mailbox.OpAddNotification, got.Actions[1].Op)
	assert.Equal(t, controller.KeyAfterHoursNotification, got.Actions[1].Key)
	assert.Equal(t, "Email scheduled to send at Monday, July 8 at 7:00 AM (next business day).", got.Actions[1].Notification.Message)
}

func TestCompose_DefaultsToClockAndEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/events/compose", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got testEventResponse
	require.NoError(t, json.Unmarshal(body, &got))
	// The clock reads 10:00 on a Wednesday, inside business hours
	assert.False(t, got.Outcome.Delayed)
	assert.NotNil(t, got.Actions)
	assert.Empty(t, got.Actions)
}

func TestCompose_InvalidTime(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/events/compose", `{"now":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid now")
}

func TestToggleAndSettings(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/delay/toggle", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var toggled testEventResponse
	require.NoError(t, json.Unmarshal(body, &toggled))
	require.NotNil(t, toggled.Enabled)
	assert.False(t, *toggled.Enabled)
	require.Len(t, toggled.Actions, 2)
	assert.Equal(t, "Delay Send feature is now disabled", toggled.Actions[1].Notification.Message)

	resp, body = do(t, http.MethodGet, ts.URL+"/v1/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"delaySendEnabled":false,"businessStartHour":7,"businessEndHour":18,"summary":"7 AM - 6 PM, Monday-Friday"}`, string(body))

	resp, body = do(t, http.MethodPost, ts.URL+"/v1/delay/toggle", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &toggled))
	assert.True(t, *toggled.Enabled)
}

func TestSaveHours(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPut, ts.URL+"/v1/settings/hours", `{"start":9,"end":17}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var saved testEventResponse
	require.NoError(t, json.Unmarshal(body, &saved))
	require.NotNil(t, saved.Settings)
	assert.Equal(t, "9 AM - 5 PM, Monday-Friday", saved.Settings.Summary)
	require.Len(t, saved.Actions, 1)
	assert.Equal(t, controller.KeyHoursUpdated, saved.Actions[0].Key)

	resp, body = do(t, http.MethodPut, ts.URL+"/v1/settings/hours", `{"start":17,"end":9}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var rejected testEventResponse
	require.NoError(t, json.Unmarshal(body, &rejected))
	require.Len(t, rejected.Actions, 1)
	assert.Equal(t, controller.KeyHoursError, rejected.Actions[0].Key)
	assert.Equal(t, mailbox.Error, rejected.Actions[0].Notification.Type)

	resp, _ = do(t, http.MethodPut, ts.URL+"/v1/settings/hours", `{"start":9}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveDelay(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/delay/remove", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got testEventResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Actions, 3)
	assert.True(t, mailbox.IsNoDelay(*got.Actions[0].DeliveryTime))
	assert.Equal(t, controller.KeyDelayRemoved, got.Actions[1].Key)
	assert.Equal(t, mailbox.OpRemoveNotification, got.Actions[2].Op)
	assert.Equal(t, controller.KeyAfterHoursNotification, got.Actions[2].Key)
}

func TestSchedule(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/schedule?at=2024-11-27T10:00:00", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{
		"at": "2024-11-27T10:00:00",
		"outsideBusinessHours": false,
		"nextBusinessDayStart": "2024-12-02T07:00:00",
		"businessHours": "7 AM - 6 PM, Monday-Friday",
		"delayWouldBeApplied": false
	}`, string(body))

	resp, body = do(t, http.MethodGet, ts.URL+"/v1/schedule?at=2024-07-04T21:00:00", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Independence Day", got["holiday"])
	assert.Equal(t, true, got["delayWouldBeApplied"])
	assert.Equal(t, "2024-07-05T07:00:00", got["nextBusinessDayStart"])

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/schedule?at=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHolidays(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/v1/holidays/2024", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var holidays []holidayResponse
	require.NoError(t, json.Unmarshal(body, &holidays))
	require.Len(t, holidays, 10)
	assert.Equal(t, holidayResponse{Name: "Memorial Day", Date: "2024-05-27"}, holidays[3])

	resp, body = do(t, http.MethodGet, ts.URL+"/v1/holidays/2024?format=ics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")
	calendar, err := ics.ParseCalendar(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, calendar.Events(), 10)

	resp, _ = do(t, http.MethodGet, ts.URL+"/v1/holidays/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	do(t, http.MethodPost, ts.URL+"/v1/events/compose", `{"now":"2024-07-06T12:00:00"}`)
	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "after_hours_messages_delayed_total")
}
