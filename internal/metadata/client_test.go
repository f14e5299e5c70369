package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) (*Client, *string) {
	t.Helper()
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client(), nil), &gotURL
}

func TestDataset_Found(t *testing.T) {
	c, gotURL := serve(t, http.StatusOK, `{
		"Id": "d123",
		"accessRights": "public",
		"_embedded": {"versions": [{"version": "1"}, {"version": "2"}]}
	}`)

	ds, err := c.Dataset(context.Background(), "d123")

	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, "/datasets/d123?embed=versions", *gotURL)
	assert.Equal(t, "d123", ds.ID)
	assert.Equal(t, "public", ds.AccessRights)
	assert.True(t, ds.HasVersion("1"))
	assert.True(t, ds.HasVersion("2"))
	assert.False(t, ds.HasVersion("3"))
}

func TestDataset_NotFound(t *testing.T) {
	c, _ := serve(t, http.StatusNotFound, `{"message":"not found"}`)

	ds, err := c.Dataset(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, ds)
}

func TestDataset_InvalidJSONOn200IsNotFound(t *testing.T) {
	c, _ := serve(t, http.StatusOK, ``)

	ds, err := c.Dataset(context.Background(), "d123")

	require.NoError(t, err)
	assert.Nil(t, ds)
}

func TestDataset_ServerError(t *testing.T) {
	c, _ := serve(t, http.StatusBadGateway, `{"message":"bad gateway"}`)

	_, err := c.Dataset(context.Background(), "d123")

	assert.ErrorIs(t, err, ErrServer)
}

func TestDataset_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, nil, nil)

	_, err := c.Dataset(context.Background(), "d123")

	assert.ErrorIs(t, err, ErrServer)
}

func TestDataset_MissingIDFallsBackToRequested(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `{"accessRights":"restricted"}`)

	ds, err := c.Dataset(context.Background(), "d123")

	require.NoError(t, err)
	assert.Equal(t, "d123", ds.ID)
	assert.Empty(t, ds.Versions)
}
