package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ivanoskov/budget_manager/internal/config"
	"github.com/ivanoskov/budget_manager/internal/server"
)

// Request is the shape an API gateway hands the function.
type Request struct {
	HTTPMethod string            `json:"httpMethod"`
	Path       string            `json:"path"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

// Response is the gateway reply shape.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// bufferedResponse captures one handler reply so it can be repackaged
// as a gateway Response.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (w *bufferedResponse) Header() http.Header { return w.header }

func (w *bufferedResponse) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

func (w *bufferedResponse) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

// Handler serves one gateway event by replaying it through the same
// HTTP handler the standalone server uses.
func Handler(ctx context.Context, request Request) (*Response, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}

	srv := server.New(cfg, logger)

	req, err := http.NewRequestWithContext(ctx, request.HTTPMethod, request.Path, strings.NewReader(request.Body))
	if err != nil {
		return errorResponse(err)
	}
	for k, v := range request.Headers {
		req.Header.Set(k, v)
	}

	rec := newBufferedResponse()
	srv.Handler().ServeHTTP(rec, req)
	if rec.status == 0 {
		rec.status = http.StatusOK
	}

	headers := make(map[string]string, len(rec.header))
	for k := range rec.header {
		headers[k] = rec.header.Get(k)
	}

	return &Response{
		StatusCode: rec.status,
		Body:       rec.body.String(),
		Headers:    headers,
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Entry point for local smoke testing only; deployments invoke
	// Handler directly.
}
