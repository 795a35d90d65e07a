package billing

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/cafemanage/api/internal/model"
)

// SMTPDeliverer emails bills as PDF attachments through a plain SMTP account.
type SMTPDeliverer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPDeliverer creates an SMTPDeliverer.
func NewSMTPDeliverer(host string, port int, username, password, from string) *SMTPDeliverer {
	return &SMTPDeliverer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

// DeliverBill sends the rendered bill to the given address.
func (d *SMTPDeliverer) DeliverBill(address string, order model.Order, document []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", d.From)
	m.SetHeader("To", address)
	m.SetHeader("Subject", fmt.Sprintf("Your bill %s", order.ID))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nThank you for your order. Your bill %s for %s is attached.\n",
		order.CustomerName, order.ID, order.Total.StringFixed(2),
	))
	m.Attach(order.ID+".pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(document)
		return err
	}))

	dialer := gomail.NewDialer(d.Host, d.Port, d.Username, d.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("deliver bill %s to %s: %w", order.ID, address, err)
	}
	return nil
}
