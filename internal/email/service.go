package email

import (
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/example/tg-storefront/internal/domain/order"
)

var ErrNoRecipients = errors.New("no recipients")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
	auth smtp.Auth
	send sendFunc
}

// NewService creates a new email service. Empty username disables SMTP AUTH.
func NewService(host, port, from, username, password string) *Service {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Service{
		host: host,
		port: port,
		from: from,
		auth: auth,
		send: smtp.SendMail,
	}
}

// SendNewOrder mails the order summary to every recipient in one message.
func (s *Service) SendNewOrder(to []string, e order.OrderSubmitted) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	msg := s.compose(to, NewOrderSubject(e.Order), BuildNewOrderBody(e))
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, s.auth, s.from, to, msg); err != nil {
		return fmt.Errorf("failed to send order %d notification: %w", e.Order.ID, err)
	}
	return nil
}

func (s *Service) compose(to []string, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, strings.Join(to, ", "), mime.QEncoding.Encode("utf-8", subject), body))
}
