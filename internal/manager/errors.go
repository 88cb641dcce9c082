package manager

import (
	"net/http"

	"surrogated/internal/invoke"
)

// invalidInputsError signals a request body whose fields cannot form a
// feature vector.
type invalidInputsError struct{ err error }

func (e invalidInputsError) Error() string   { return "Invalid inputs: " + e.err.Error() }
func (e invalidInputsError) Unwrap() error   { return e.err }
func (e invalidInputsError) StatusCode() int { return http.StatusBadRequest }

// IsInvalidInputs reports whether err rejected the request fields (return 400).
func IsInvalidInputs(err error) bool {
	_, ok := err.(invalidInputsError)
	return ok
}

// emissionsUnavailableError signals that the emissions table could not be
// read, so no result can be enriched.
type emissionsUnavailableError struct{ err error }

func (e emissionsUnavailableError) Error() string {
	return "Failed to read emissions.csv: " + e.err.Error()
}
func (e emissionsUnavailableError) Unwrap() error   { return e.err }
func (e emissionsUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// IsEmissionsUnavailable reports whether err means the emissions table is unreadable (return 503).
func IsEmissionsUnavailable(err error) bool {
	_, ok := err.(emissionsUnavailableError)
	return ok
}

// configurationNotFoundError is returned for names outside the catalog.
type configurationNotFoundError struct{ name string }

func (e configurationNotFoundError) Error() string   { return "configuration not found: " + e.name }
func (e configurationNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrConfigurationNotFound returns an error for a name outside the catalog.
func ErrConfigurationNotFound(name string) error { return configurationNotFoundError{name: name} }

// IsConfigurationNotFound reports whether the error indicates an unknown configuration.
func IsConfigurationNotFound(err error) bool {
	_, ok := err.(configurationNotFoundError)
	return ok
}

// notLoadedError is returned when a single configuration is requested whose
// artifact did not load.
type notLoadedError struct{ name string }

func (e notLoadedError) Error() string   { return invoke.ErrNotLoaded.Error() + ": " + e.name }
func (e notLoadedError) Unwrap() error   { return invoke.ErrNotLoaded }
func (e notLoadedError) StatusCode() int { return http.StatusServiceUnavailable }
