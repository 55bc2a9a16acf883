// Package repository defines the persistence and data-source contracts the
// use cases depend on. Concrete implementations live under internal/infra.
package repository

import (
	"context"
	"fmt"

	"parishfinder/internal/domain/entity"
)

// ParishSource is the common capability every parish data source
// implements: given a coordinate, return nearby parish records with their
// distance from the query point populated, sorted ascending by distance.
//
// radiusMiles is advisory; sources with a fixed upstream radius (for
// example the schedule API) may ignore it.
type ParishSource interface {
	Search(ctx context.Context, lat, lng, radiusMiles float64) ([]*entity.Parish, error)
}

// SourceError is a transport or upstream failure from a data source or
// the geocoder. StatusCode carries the upstream HTTP status when one
// exists; zero means a transport-level failure with no response.
//
// The retry controller treats statuses in [400,500) as terminal.
type SourceError struct {
	Status  int
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("source error (status %d): %s", e.Status, e.Message)
	}

	return fmt.Sprintf("source error: %s", e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// StatusCode returns the upstream HTTP status, or zero.
func (e *SourceError) StatusCode() int {
	return e.Status
}

// NewSourceError builds a SourceError with an upstream status.
func NewSourceError(status int, message string) *SourceError {
	return &SourceError{Status: status, Message: message}
}

// WrapSourceError builds a status-less SourceError around a transport failure.
func WrapSourceError(err error, message string) *SourceError {
	return &SourceError{Message: message, Err: err}
}
