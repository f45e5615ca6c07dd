package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quoteboard/internal/adapters/clients"
)

// maxBodyBytes bounds how much of an upstream body is decoded.
const maxBodyBytes = 1 << 20

// BaseAdapter provides the request and decode plumbing shared by adapters.
type BaseAdapter struct {
	client *clients.Client
}

// NewBaseAdapter creates a base adapter around client.
func NewBaseAdapter(client *clients.Client) BaseAdapter {
	return BaseAdapter{client: client}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.client.ServiceName()
}

// Get performs a GET request and returns the response body, which the caller
// must close. Failures are returned as mapped domain errors.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.ServiceName(), operation)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.ServiceName(), operation)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
// Bodies larger than maxBodyBytes fail to decode.
func DecodeResponse[T any](body io.ReadCloser) (T, error) {
	var result T

	if body == nil {
		return result, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&result); err != nil {
		return result, fmt.Errorf("decoding response: %w", err)
	}

	return result, nil
}
