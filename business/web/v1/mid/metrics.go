package mid

import (
	"context"
	"net/http"

	"github.com/chainforge/minichain/foundation/metrics"
	"github.com/chainforge/minichain/foundation/web"
)

// Metrics updates the request counters maintained for the service.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			metrics.Requests.Inc()

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
