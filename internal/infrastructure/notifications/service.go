package notifications

import (
	"errors"

	"go.uber.org/zap"
)

var errSMSNotConfigured = errors.New("sms channel not configured")

// SMSSender delivers text messages
type SMSSender interface {
	SendSMS(to, message string) error
}

// EmailSender delivers plain-text email
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// NotificationServiceImpl implements domain.NotificationService by routing
// each channel to its sender. The SMS sender is optional.
type NotificationServiceImpl struct {
	sms    SMSSender
	email  EmailSender
	logger *zap.Logger
}

// NewNotificationService combines the configured senders. Pass a nil sms
// sender when Twilio is not configured.
func NewNotificationService(sms SMSSender, email EmailSender, logger *zap.Logger) *NotificationServiceImpl {
	return &NotificationServiceImpl{sms: sms, email: email, logger: logger}
}

// SendSMS implements domain.NotificationService
func (n *NotificationServiceImpl) SendSMS(to, message string) error {
	if n.sms == nil {
		return errSMSNotConfigured
	}
	if err := n.sms.SendSMS(to, message); err != nil {
		n.logger.Warn("sms delivery failed", zap.Error(err))
		return err
	}
	return nil
}

// SendEmail implements domain.NotificationService
func (n *NotificationServiceImpl) SendEmail(to, subject, body string) error {
	if err := n.email.SendEmail(to, subject, body); err != nil {
		n.logger.Warn("email delivery failed", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}
