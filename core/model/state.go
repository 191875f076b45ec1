// Package model provides estimator interfaces, fitted-state management and
// snapshot persistence shared by the regression models.
package model

import (
	"sync"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// FitState holds the fitted state of a model in a thread-safe manner.
//
// The state is either absent (the model is unfitted) or present as one
// immutable value of type T. Store replaces it wholesale, so concurrent
// readers observe either the previous value or the new one, never a mix.
// Values handed out by Load must not be mutated.
type FitState[T any] struct {
	mu    sync.RWMutex
	value *T
}

// Load returns the current fitted value and whether one is present.
func (s *FitState[T]) Load() (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.value != nil
}

// Store installs v as the fitted value. A nil v resets the state.
func (s *FitState[T]) Store(v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

// IsFitted returns whether a fitted value is present.
func (s *FitState[T]) IsFitted() bool {
	_, ok := s.Load()
	return ok
}

// Reset discards the fitted value.
func (s *FitState[T]) Reset() {
	s.Store(nil)
}

// Require returns the fitted value or a NotFittedError naming the model
// and the method that needed it.
func (s *FitState[T]) Require(modelName, method string) (*T, error) {
	v, ok := s.Load()
	if !ok {
		return nil, errors.NewNotFittedError(modelName, method)
	}
	return v, nil
}
