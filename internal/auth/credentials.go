package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// credentialsCtxKey is the Gin context key used to store the caller's credentials.
const credentialsCtxKey = "credentials"

// Credentials is what the caller presented for one request.
type Credentials struct {
	DatasetID    string
	Version      string
	BearerToken  string
	WebhookToken string
}

// CredentialsMiddleware extracts the bearer token, the webhook token query
// parameter and the dataset path parameters. It makes no access decision;
// that happens in the request flow after this.
func CredentialsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(credentialsCtxKey, Credentials{
			DatasetID:    c.Param("datasetId"),
			Version:      c.Param("version"),
			BearerToken:  BearerToken(c.GetHeader("Authorization")),
			WebhookToken: strings.TrimSpace(c.Query("token")),
		})
		c.Next()
	}
}

// FromContext returns the credentials stored by CredentialsMiddleware.
func FromContext(c *gin.Context) Credentials {
	v, _ := c.Get(credentialsCtxKey)
	cr, _ := v.(Credentials)
	return cr
}

// BearerToken returns the last space-separated field of an Authorization
// header, so both "Bearer abc" and a bare "abc" yield "abc".
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
