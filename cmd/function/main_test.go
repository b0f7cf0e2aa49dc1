package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerReplaysGatewayEvent(t *testing.T) {
	resp, err := Handler(context.Background(), Request{
		HTTPMethod: http.MethodGet,
		Path:       "/api/transactions",
	})
	require.NoError(t, err)

	// No bearer token: the auth middleware answers without touching
	// the backend, which is all a credential-less test can reach.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Contains(t, resp.Body, "missing bearer token")
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestBufferedResponse(t *testing.T) {
	rec := newBufferedResponse()
	rec.Header().Set("Content-Type", "text/plain")
	n, err := rec.Write([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, http.StatusOK, rec.status)
	assert.Equal(t, "ok", rec.body.String())

	// Later status writes must not override the first.
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rec.status)
}
