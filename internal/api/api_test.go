package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowher/empowher-server/internal/insight/rules"
	"github.com/empowher/empowher-server/internal/store"
	"github.com/empowher/empowher-server/internal/store/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := sqlite.NewWithDB(db)

	router := NewRouter(RouterDeps{
		Store:    st,
		Provider: rules.New(),
		Log:      zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSubmitCheckin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/v0/users/u1/checkins",
		`{"who5_q1":5,"who5_q2":5,"who5_q3":5,"gad2_q1":0,"gad2_q2":0,"phq2_q1":0,"phq2_q2":0}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["entryId"])
	assert.Equal(t, "green", body["emotionalTier"])
	assert.NotEmpty(t, body["insights"])
	decisions, ok := body["agentDecisions"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, decisions, "emotional")
}

func TestSubmitCheckin_Crisis(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/v0/users/u1/checkins",
		`{"mood_score":2,"energy_level":"low","stress_level":"high"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "CRITICAL", body["priority"])
	crisis, ok := body["crisis"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, crisis["helplines"])
}

func TestSubmitCheckin_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty submission", `{}`},
		{"item above scale", `{"phq2_q1":4}`},
		{"mood out of range", `{"mood_score":11}`},
		{"bad energy level", `{"mood_score":5,"energy_level":"extreme"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v0/users/u1/checkins", "application/json", bytes.NewBufferString(tc.body))
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestOutcomeFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	// A check-in produces decisions to rate.
	resp, body := postJSON(t, srv.URL+"/v0/users/u1/checkins", `{"who5_q1":3,"who5_q2":3,"who5_q3":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decisions := body["agentDecisions"].(map[string]interface{})
	intervention := decisions["intervention"].(map[string]interface{})
	decisionID := intervention["decisionId"].(string)
	require.NotEmpty(t, decisionID)

	resp, outcome := postJSON(t, srv.URL+"/v0/users/u1/outcomes",
		fmt.Sprintf(`{"decisionId":%q,"action":"gratitude_practice","completed":true,"rating":5}`, decisionID))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, outcome["outcomeId"])

	resp, analytics := getJSON(t, srv.URL+"/v0/users/u1/analytics/interventions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), analytics["count"])
}

func TestRecordOutcome_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v0/users/u1/outcomes", "application/json",
		bytes.NewBufferString(`{"decisionId":"missing","action":"x"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/v0/users/u1/outcomes", "application/json",
		bytes.NewBufferString(`{"decisionId":"d1","action":"x","rating":9}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMemory(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/v0/users/u1/checkins", `{"who5_q1":5,"who5_q2":5,"who5_q3":5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := getJSON(t, srv.URL+"/v0/users/u1/memory")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", body["userId"])
	longTerm := body["longTerm"].(map[string]interface{})
	assert.Equal(t, "thriving", longTerm["stage"])
}

func TestListDecisions(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/v0/users/u1/checkins", `{"who5_q1":5,"who5_q2":5,"who5_q3":5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := getJSON(t, srv.URL+"/v0/users/u1/decisions?limit=3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])

	resp, err := http.Get(srv.URL + "/v0/users/u1/decisions?limit=abc")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetInstruments(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/v0/instruments")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	phq2 := body["phq2"].(map[string]interface{})
	assert.Len(t, phq2["questions"], 2)
	who5 := body["who5"].(map[string]interface{})
	assert.Len(t, who5["questions"], 3)
}

func TestGetCrisisResources(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/v0/crisis/resources")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["helplines"])
	msg := body["supportMessage"].(map[string]interface{})
	assert.NotEmpty(t, msg["message"])
}

func TestCheckHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/v0/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}
