package service

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable é o sentinela para errors.Is
var ErrUpstreamUnavailable = errors.New("odds upstream unavailable")

// UpstreamUnavailableError é devolvido quando o fornecedor falhou e não havia
// snapshot (fresco ou antigo) para servir. Status é o HTTP do fornecedor, ou 0.
type UpstreamUnavailableError struct {
	Sport  string
	Status int
	Err    error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("odds upstream unavailable for %s (status %d): %v", e.Sport, e.Status, e.Err)
	}
	return fmt.Sprintf("odds upstream unavailable for %s: %v", e.Sport, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

func (e *UpstreamUnavailableError) Is(target error) bool { return target == ErrUpstreamUnavailable }
