package relay

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailSink e-mails the shop admin about each event.
type MailSink struct {
	from, to string
	dialer   mailer
}

func NewMailSink(host string, port int, user, password, from, to string) *MailSink {
	d := gomail.NewDialer(host, port, user, password)
	d.SSL = port == 465
	return &MailSink{from: from, to: to, dialer: d}
}

func (s *MailSink) Name() string { return "mail" }

func (s *MailSink) Send(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", subject(ev))
	m.SetBody("text/plain", body(ev))
	return s.dialer.DialAndSend(m)
}

func (s *MailSink) Close() error { return nil }

func subject(ev Event) string {
	switch ev.Kind {
	case KindPaymentReceived:
		return "Payment received for order #" + ev.OrderNumber
	case KindNewCODOrder:
		return "New COD order #" + ev.OrderNumber
	}
	return "New order #" + ev.OrderNumber
}

func body(ev Event) string {
	who := ev.CustomerName
	if who == "" {
		who = "a customer"
	}
	return fmt.Sprintf("Order #%s placed by %s.\nAmount: Rs. %s\nTime: %s\n",
		ev.OrderNumber, who, ev.Amount.StringFixed(2), ev.Timestamp.Format("02 Jan 2006 15:04 MST"))
}
