// Package delivery defines the contract every transport implements.
package delivery

import "context"

// Delivery is a long-running transport such as an HTTP server. Serve
// blocks until the transport stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
