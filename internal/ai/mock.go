package ai

import (
	"context"
	"fmt"

	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

// mockProvider never answers. It keeps a deployment without LLM credentials
// usable: every cache miss falls back to the degraded report.
type mockProvider struct{}

func (mockProvider) Name() string {
	return "mock"
}

func (mockProvider) Generate(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: mock provider", appErr.ErrUnavailable)
}

func init() {
	Register("mock", func(interface{}) (IProvider, error) {
		return mockProvider{}, nil
	})
}
