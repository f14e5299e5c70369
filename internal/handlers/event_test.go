package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/PratikDhanave/event-collector/internal/collector"
	"github.com/PratikDhanave/event-collector/internal/models"
)

type stubPoster struct {
	got collector.Request
	res collector.Result
}

func (s *stubPoster) PostEvents(_ context.Context, req collector.Request) collector.Result {
	s.got = req
	return s.res
}

func newEngine(p EventPoster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterEventRoutes(r, p)
	RegisterMetricRoutes(r, prometheus.NewRegistry())
	return r
}

func TestEventRoute_PassesRequestThrough(t *testing.T) {
	p := &stubPoster{res: collector.Result{StatusCode: http.StatusOK, Body: models.Response{Message: "Ok"}}}
	r := newEngine(p)

	req := httptest.NewRequest(http.MethodPost, "/datasets/d123/versions/1/events?token=wh-1", strings.NewReader(`{"key00":"value00"}`))
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Ok"}`, w.Body.String())
	assert.Equal(t, "d123", p.got.DatasetID)
	assert.Equal(t, "1", p.got.Version)
	assert.Equal(t, "tok", p.got.Credentials.BearerToken)
	assert.Equal(t, "wh-1", p.got.Credentials.WebhookToken)
	assert.Equal(t, `{"key00":"value00"}`, string(p.got.Body))
}

func TestEventRoute_FailedElementsKeepPayload(t *testing.T) {
	p := &stubPoster{res: collector.Result{
		StatusCode: http.StatusInternalServerError,
		Body: models.Response{
			Message:        "Request failed for some elements",
			FailedElements: []json.RawMessage{json.RawMessage(`{"html":"<b>&</b>"}`)},
		},
	}}
	r := newEngine(p)

	req := httptest.NewRequest(http.MethodPost, "/datasets/d123/versions/1/events", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"<b>&</b>"`)
}

func TestEventRoute_WrongMethod(t *testing.T) {
	r := newEngine(&stubPoster{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/datasets/d123/versions/1/events", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricRoute(t *testing.T) {
	r := newEngine(&stubPoster{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
