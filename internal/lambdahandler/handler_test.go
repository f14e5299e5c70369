package lambdahandler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/event-collector/internal/collector"
	"github.com/PratikDhanave/event-collector/internal/models"
)

type recordingPoster struct {
	got collector.Request
	res collector.Result
}

func (r *recordingPoster) PostEvents(_ context.Context, req collector.Request) collector.Result {
	r.got = req
	return r.res
}

func TestHandle_TranslatesRequestAndResponse(t *testing.T) {
	p := &recordingPoster{res: collector.Result{
		StatusCode: http.StatusInternalServerError,
		Body: models.Response{
			Message:        "Request failed for some elements",
			FailedElements: []json.RawMessage{json.RawMessage(`{"key00":"value00"}`)},
		},
	}}

	resp, err := New(p).Handle(context.Background(), events.APIGatewayProxyRequest{
		PathParameters:        map[string]string{"datasetId": "d123", "version": "1"},
		Headers:               map[string]string{"authorization": "Bearer tok"},
		QueryStringParameters: map[string]string{"token": "wh-1"},
		Body:                  `[{"key00":"value00"}]`,
	})

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Request failed for some elements","failedElements":[{"key00":"value00"}]}`, resp.Body)

	assert.Equal(t, "d123", p.got.DatasetID)
	assert.Equal(t, "1", p.got.Version)
	assert.Equal(t, "tok", p.got.Credentials.BearerToken)
	assert.Equal(t, "wh-1", p.got.Credentials.WebhookToken)
	assert.Equal(t, `[{"key00":"value00"}]`, string(p.got.Body))
}

func TestHandle_LegacyDatasetIDParameter(t *testing.T) {
	p := &recordingPoster{res: collector.Result{StatusCode: 200, Body: models.Response{Message: "Ok"}}}

	resp, err := New(p).Handle(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: map[string]string{"dataset_id": "d123", "version": "1"},
		Body:           `{}`,
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Ok"}`, resp.Body)
	assert.Equal(t, "d123", p.got.DatasetID)
}

func TestHandle_Base64Body(t *testing.T) {
	p := &recordingPoster{res: collector.Result{StatusCode: 200, Body: models.Response{Message: "Ok"}}}

	_, err := New(p).Handle(context.Background(), events.APIGatewayProxyRequest{
		PathParameters:  map[string]string{"datasetId": "d123", "version": "1"},
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)),
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(p.got.Body))
}

func TestHandle_BadBase64(t *testing.T) {
	p := &recordingPoster{}

	resp, err := New(p).Handle(context.Background(), events.APIGatewayProxyRequest{
		Body:            "%%%",
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
