package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alfredoptarigan/cv-reader/internal/models"
)

type MockCandidateAgent struct {
	mock.Mock
}

func (m *MockCandidateAgent) Extract(ctx context.Context, batch string) (models.Outcome, error) {
	args := m.Called(ctx, batch)

	outcome, _ := args.Get(0).(models.Outcome)
	return outcome, args.Error(1)
}
