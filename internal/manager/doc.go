// Package manager is the service layer between the HTTP API and the
// prediction core. It owns the registry, the emissions table and the
// invoker settings, and shapes per-configuration outcomes into API results.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, Ready, ListConfigurations.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - predict.go: Predict, the request path (validation, fan-out, enrichment, cache).
//   - sweep.go: Sweep, one configuration evaluated along one input field.
//   - status_report.go: Status for /status.
//   - sanity.go: SanityCheck for the check command and startup logging.
//   - errors.go: error types and helpers (IsInvalidInputs, IsEmissionsUnavailable, ...).
//   - events.go, eventpub_memory.go: lifecycle events.
//
// External packages should use public methods only (NewWithConfig, Predict,
// Sweep, Status, Ready, ListConfigurations).
package manager
