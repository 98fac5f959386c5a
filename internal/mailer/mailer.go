package mailer

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

var (
	// ErrInvalidMessage indicates a contact submission missing required fields.
	ErrInvalidMessage = errors.New("mailer: name, email and message are required")

	errMissingHost  = errors.New("mailer: smtp host is required")
	errMissingInbox = errors.New("mailer: contact inbox is required")
)

// Sender dispatches contact-form mail. Implemented by Mailer; faked in tests.
type Sender interface {
	SendContact(message ContactMessage) error
}

// ContactMessage is one contact-form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// Validate checks the required submission fields.
func (m ContactMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Message) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Config describes the SMTP transport and addressing.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Inbox    string
	Logger   *zap.Logger
}

// Mailer sends the admin notification and the customer auto-reply for contact
// submissions over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	inbox  string
	logger *zap.Logger
}

// NewMailer validates the configuration and constructs the mailer.
func NewMailer(cfg Config) (*Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errMissingHost
	}
	if strings.TrimSpace(cfg.Inbox) == "" {
		return nil, errMissingInbox
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		inbox:  cfg.Inbox,
		logger: logger,
	}, nil
}

// SendContact dispatches both messages for a submission in one SMTP dial.
// Callers on the contact endpoint treat failures as non-fatal: the submitter
// still gets a success response once validation passed.
func (m *Mailer) SendContact(message ContactMessage) error {
	if err := message.Validate(); err != nil {
		return err
	}

	notification := gomail.NewMessage()
	notification.SetHeader("From", m.from)
	notification.SetHeader("To", m.inbox)
	notification.SetHeader("Reply-To", message.Email)
	notification.SetHeader("Subject", fmt.Sprintf("Contact form: %s", message.Name))
	notification.SetBody("text/plain", contactNotificationBody(message))

	autoReply := gomail.NewMessage()
	autoReply.SetHeader("From", m.from)
	autoReply.SetHeader("To", message.Email)
	autoReply.SetHeader("Subject", "We received your message")
	autoReply.SetBody("text/plain", contactAutoReplyBody(message))

	if err := m.dialer.DialAndSend(notification, autoReply); err != nil {
		return fmt.Errorf("mailer: send contact mail: %w", err)
	}
	m.logger.Info("contact mail sent", zap.String("from_email", message.Email))
	return nil
}

func contactNotificationBody(message ContactMessage) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Name: %s\n", message.Name)
	fmt.Fprintf(&builder, "Email: %s\n", message.Email)
	if message.Phone != "" {
		fmt.Fprintf(&builder, "Phone: %s\n", message.Phone)
	}
	fmt.Fprintf(&builder, "\n%s\n", message.Message)
	return builder.String()
}

func contactAutoReplyBody(message ContactMessage) string {
	return fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We received your message and will get back to you within one business day.\n\nListingShield Support\n", message.Name)
}
