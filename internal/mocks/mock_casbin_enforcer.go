package mocks

import "github.com/Mulandii/Clinic-cms/domain"

// MockCasbinEnforcer implements domain.CasbinEnforcer interface for testing.
// Without an EnforceFunc it answers from Policies by exact match.
type MockCasbinEnforcer struct {
	EnforceFunc   func(rvals ...interface{}) (bool, error)
	GetPolicyFunc func() ([][]string, error)

	Policies [][]string
	Calls    int
}

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with a small default policy set
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{
		Policies: [][]string{
			{"role_admin", "/users"},
			{"role_doctor", "/records"},
			{"role_patient", "/records"},
			{"role_pharmacist", "/inventory"},
		},
	}
}

func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	m.Calls++
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	if len(rvals) != 2 {
		return false, nil
	}
	sub, _ := rvals[0].(string)
	obj, _ := rvals[1].(string)
	for _, p := range m.Policies {
		if len(p) == 2 && p[0] == sub && p[1] == obj {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	return m.Policies, nil
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)
