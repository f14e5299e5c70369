package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/event-collector/internal/auth"
	"github.com/PratikDhanave/event-collector/internal/collector"
)

// EventPoster is the request flow behind the events endpoint.
type EventPoster interface {
	PostEvents(ctx context.Context, req collector.Request) collector.Result
}

// RegisterEventRoutes registers the ingestion endpoint.
//
// POST /datasets/:datasetId/versions/:version/events
// - Authorization: Bearer <token>, or ?token=<webhook token>, depending on AUTH_MODE
// - Body: one JSON object or an array of JSON objects
// - 200 when every event reached the stream; 500 lists the events that did not
func RegisterEventRoutes(r gin.IRoutes, svc EventPoster) {
	r.POST("/datasets/:datasetId/versions/:version/events", auth.CredentialsMiddleware(), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Body is not a valid JSON document"})
			return
		}

		cr := auth.FromContext(c)
		res := svc.PostEvents(c.Request.Context(), collector.Request{
			DatasetID:   cr.DatasetID,
			Version:     cr.Version,
			Credentials: cr,
			Body:        body,
		})

		c.PureJSON(res.StatusCode, res.Body)
	})
}
