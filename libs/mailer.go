package libs

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"freshfetch/config"
	"freshfetch/models"

	"gopkg.in/gomail.v2"
)

// MailTimeout bounds a whole SMTP session, from dial to QUIT.
const MailTimeout = 30 * time.Second

type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewEmailService(cfg *config.Config) (*EmailService, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return nil, errors.New("SMTP configuration missing")
	}

	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.SMTPFrom,
		timeout:  MailTimeout,
	}, nil
}

func (s *EmailService) SendOrderConfirmation(order *models.Order) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", order.Email)
	m.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s - FreshFetch", order.ID.Hex()))
	m.SetBody("text/html", OrderConfirmationBody(order))

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// send delivers m over one SMTP session whose connection carries a deadline,
// so a stalled server fails the send instead of blocking it.
func (s *EmailService) send(m *gomail.Message) error {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)), s.timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}

	tlsConfig := &tls.Config{ServerName: s.host}
	if s.port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && s.port != 465 {
		if err := c.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if ok, _ := c.Extension("AUTH"); ok && s.username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return err
		}
	}

	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, addr := range to {
			if err := c.Rcpt(addr); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(sender, m); err != nil {
		return err
	}
	return c.Quit()
}

// OrderConfirmationBody renders the HTML receipt for an order.
func OrderConfirmationBody(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Products {
		name := item.Name
		if item.Unit != "" {
			name = fmt.Sprintf("%s (%s)", item.Name, item.Unit)
		}
		fmt.Fprintf(&rows, `<tr><td>%s</td><td style="text-align:center">%d</td><td style="text-align:right">$%.2f</td></tr>`,
			name, item.Quantity, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .logo { font-size: 24px; font-weight: bold; color: #16a34a; text-align: center; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        td { padding: 6px 0; border-bottom: 1px solid #eee; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">FreshFetch</div>
        <h2 style="color: #333;">Thank you for your order!</h2>
        <p><strong>Order:</strong> %s</p>
        <table>%s</table>
        <p>Subtotal: $%.2f<br>Shipping: $%.2f<br><strong>Total: $%.2f</strong></p>
        <p>Payment: %s (%s)</p>
        <p>We will let you know when your order ships.</p>
        <div class="footer">
            <p>This is an automated email. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, order.ID.Hex(), rows.String(), order.Subtotal, order.Shipping, order.Total, order.PaymentMethod, order.PaymentStatus)
}
