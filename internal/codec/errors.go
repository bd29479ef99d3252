package codec

import (
	"errors"
	"fmt"
	"strings"
)

// DispatchErrorKind classifies dispatch failures.
type DispatchErrorKind int

const (
	// NoCompatibleEntryPoint means the linked library exposes none of the known call shapes.
	NoCompatibleEntryPoint DispatchErrorKind = iota + 1
	// SigningFailed means the resolved entry point returned an error or panicked.
	SigningFailed
)

// Sentinels matched by DispatchError through errors.Is.
var (
	ErrNoCompatibleEntryPoint = errors.New("no compatible token builder entry point")
	ErrSigningFailed          = errors.New("token signing failed")
)

// DispatchError reports why a token could not be produced.
type DispatchError struct {
	Kind       DispatchErrorKind
	EntryPoint string
	Probed     []string
	Err        error
}

func (e *DispatchError) Error() string {
	switch e.Kind {
	case NoCompatibleEntryPoint:
		return fmt.Sprintf("%s (probed: %s)", ErrNoCompatibleEntryPoint, strings.Join(e.Probed, ", "))
	case SigningFailed:
		return fmt.Sprintf("%s: %v", e.EntryPoint, e.Err)
	default:
		return fmt.Sprintf("dispatch error: %v", e.Err)
	}
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *DispatchError) Is(target error) bool {
	switch target {
	case ErrNoCompatibleEntryPoint:
		return e.Kind == NoCompatibleEntryPoint
	case ErrSigningFailed:
		return e.Kind == SigningFailed
	}
	return false
}
