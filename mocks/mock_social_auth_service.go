package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"huddl/internal/service"
)

// MockSocialAuthService is a mock implementation of service.SocialAuthService.
type MockSocialAuthService struct {
	mock.Mock
}

func (m *MockSocialAuthService) SignIn(ctx context.Context, input service.SocialSignInInput) (*service.SocialSignInOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SocialSignInOutput), args.Error(1)
}
