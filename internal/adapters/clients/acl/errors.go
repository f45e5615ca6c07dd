package acl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jsamuelsen/quoteboard/internal/adapters/clients"
	"github.com/jsamuelsen/quoteboard/internal/domain"
)

// MapHTTPError maps a client error or a non-2xx response to a domain error.
// resp may be nil when clientErr is set. It returns nil for 2xx responses.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	return mapStatusCode(resp.StatusCode, serviceName, operation)
}

func mapClientError(err error, serviceName, operation string) error {
	var statusErr *clients.StatusError

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.As(err, &statusErr):
		return mapStatusCode(statusErr.StatusCode, serviceName, operation)

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, serviceName, operation string) error {
	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, "")

	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")

	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed with status %d", operation, status))

	default:
		return domain.NewValidationErrorWithValue("status",
			fmt.Sprintf("%s returned unexpected status", operation), status)
	}
}
