package lambdahandler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/PratikDhanave/event-collector/internal/auth"
	"github.com/PratikDhanave/event-collector/internal/collector"
	"github.com/PratikDhanave/event-collector/internal/handlers"
)

// Handler adapts API Gateway proxy events to the events request flow.
type Handler struct {
	svc handlers.EventPoster
}

// New returns a Handler for svc.
func New(svc handlers.EventPoster) *Handler {
	return &Handler{svc: svc}
}

// Handle runs one proxy request. The returned error is always nil; every
// failure is expressed as a status code in the response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	datasetID := req.PathParameters["datasetId"]
	if datasetID == "" {
		datasetID = req.PathParameters["dataset_id"]
	}
	version := req.PathParameters["version"]

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return response(http.StatusBadRequest, `{"message":"Body is not a valid JSON document"}`), nil
		}
		body = decoded
	}

	res := h.svc.PostEvents(ctx, collector.Request{
		DatasetID: datasetID,
		Version:   version,
		Credentials: auth.Credentials{
			DatasetID:    datasetID,
			Version:      version,
			BearerToken:  auth.BearerToken(header(req.Headers, "Authorization")),
			WebhookToken: strings.TrimSpace(req.QueryStringParameters["token"]),
		},
		Body: body,
	})

	out, err := json.Marshal(res.Body)
	if err != nil {
		return response(http.StatusInternalServerError, `{"message":"Internal server error"}`), nil
	}
	return response(res.StatusCode, string(out)), nil
}

func response(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
