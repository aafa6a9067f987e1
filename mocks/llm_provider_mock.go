package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Complete(ctx context.Context, input string) (string, error) {
	args := m.Called(ctx, input)

	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) Name() string {
	return "mock"
}
