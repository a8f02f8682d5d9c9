package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct{ err error }

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) CheckAvailability(context.Context) error { return s.err }

func (s stubProvider) Models(context.Context) ([]string, error) { return nil, nil }

func (s stubProvider) ExtractAddresses(context.Context, string, string) (Extraction, error) {
	return Extraction{}, nil
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, IsAvailable(context.Background(), stubProvider{}))
	assert.False(t, IsAvailable(context.Background(), stubProvider{err: ErrUnavailable}))

	wrapped := fmt.Errorf("%w: connection refused", ErrUnavailable)
	assert.True(t, errors.Is(wrapped, ErrUnavailable))
	assert.False(t, errors.Is(wrapped, ErrNoCredential))
}
