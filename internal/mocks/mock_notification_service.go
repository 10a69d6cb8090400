package mocks

import (
	"sync"

	"github.com/Mulandii/Clinic-cms/domain"
)

// SentMessage is one message captured by MockNotificationService
type SentMessage struct {
	Channel string
	To      string
	Subject string
	Body    string
}

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	SendSMSFunc   func(to, message string) error
	SendEmailFunc func(to, subject, body string) error

	mu   sync.Mutex
	sent []SentMessage
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSMS sends an SMS message
func (m *MockNotificationService) SendSMS(to, message string) error {
	if m.SendSMSFunc != nil {
		if err := m.SendSMSFunc(to, message); err != nil {
			return err
		}
	}
	m.record(SentMessage{Channel: "sms", To: to, Body: message})
	return nil
}

// SendEmail sends an email message
func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	if m.SendEmailFunc != nil {
		if err := m.SendEmailFunc(to, subject, body); err != nil {
			return err
		}
	}
	m.record(SentMessage{Channel: "email", To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockNotificationService) record(msg SentMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

// Sent returns every successfully delivered message
func (m *MockNotificationService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

// Last returns the most recent delivered message
func (m *MockNotificationService) Last() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return SentMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*MockNotificationService)(nil)
