package registry

import "errors"

// ErrArtifactMissing is returned by Load when no artifact file exists for a
// configuration. It is recorded, never fatal.
var ErrArtifactMissing = errors.New("artifact missing")

// artifactCorruptError wraps a decode or build failure for one artifact.
type artifactCorruptError struct {
	path string
	err  error
}

func (e artifactCorruptError) Error() string {
	return "artifact corrupt: " + e.path + ": " + e.err.Error()
}

func (e artifactCorruptError) Unwrap() error { return e.err }

// IsArtifactCorrupt reports whether err came from an unreadable artifact.
func IsArtifactCorrupt(err error) bool {
	var ce artifactCorruptError
	return errors.As(err, &ce)
}

// IsArtifactMissing reports whether err means the artifact file is absent.
func IsArtifactMissing(err error) bool { return errors.Is(err, ErrArtifactMissing) }
