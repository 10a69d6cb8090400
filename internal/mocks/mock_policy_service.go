package mocks

import "github.com/Mulandii/Clinic-cms/domain"

// MockPolicyService implements domain.PolicyService interface for testing
type MockPolicyService struct {
	AllowedFunc     func(role domain.Role, route string) (bool, error)
	GetPoliciesFunc func() [][]string
}

// NewMockPolicyService creates a new MockPolicyService with default behaviors
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{}
}

func (m *MockPolicyService) Allowed(role domain.Role, route string) (bool, error) {
	if m.AllowedFunc != nil {
		return m.AllowedFunc(role, route)
	}
	// Default behavior: deny
	return false, nil
}

func (m *MockPolicyService) GetPolicies() [][]string {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	return [][]string{}
}

// Compile-time interface compliance verification
var _ domain.PolicyService = (*MockPolicyService)(nil)
