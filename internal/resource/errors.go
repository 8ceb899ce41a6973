package resource

import "fmt"

// NoSourceError reports a shader missing source text for the active
// backend. This is a fatal configuration error; no GPU object is
// created for the shader.
type NoSourceError struct {
	ShaderID string
	Key      string
}

func (e *NoSourceError) Error() string {
	return fmt.Sprintf("resource: shader %q has no source for backend %q", e.ShaderID, e.Key)
}

// UnknownResourceError reports a release of an id that was never
// registered (or already fully released).
type UnknownResourceError struct {
	Kind Kind
	ID   string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("resource: unknown %s %q", e.Kind, e.ID)
}

// DuplicateResourceError reports a backend asked to create a GPU object
// for an id it already holds one for.
type DuplicateResourceError struct {
	Kind Kind
	ID   string
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("resource: %s %q already exists", e.Kind, e.ID)
}
