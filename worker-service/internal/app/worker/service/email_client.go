package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"berrymarket/worker-service/internal/app/worker/entity"
)

// SMTPEmailClient отправляет уведомления по SMTP.
// Недоступность сервера возвращается как ошибка, чтобы consumer
// не коммитил оффсет и сообщение ушло на редоставку
type SMTPEmailClient struct {
	host     string
	port     string
	from     string
	to       string
	username string
	password string
}

// NewSMTPEmailClient создает SMTP клиент.
// Пустой username означает сервер без аутентификации (dev/test relay)
func NewSMTPEmailClient(host, port, from, to, username, password string) *SMTPEmailClient {
	return &SMTPEmailClient{
		host:     host,
		port:     port,
		from:     from,
		to:       to,
		username: username,
		password: password,
	}
}

// SendPriceChangeNotice отправляет плоско-текстовое письмо со списком
// затронутых заказов
func (c *SMTPEmailClient) SendPriceChangeNotice(ctx context.Context, event *entity.ProductPriceChangedEvent, orders []entity.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := c.buildMessage(event, orders)

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}

	addr := c.host + ":" + c.port
	if err := smtp.SendMail(addr, auth, c.from, []string{c.to}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", addr, err)
	}

	return nil
}

func (c *SMTPEmailClient) buildMessage(event *entity.ProductPriceChangedEvent, orders []entity.Order) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("From: %s\r\n", c.from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", c.to))
	sb.WriteString(fmt.Sprintf("Subject: Price changed for product %s\r\n", event.ProductID))
	sb.WriteString("\r\n")

	sb.WriteString(fmt.Sprintf(
		"Price of product %s changed from %.2f to %.2f at %s.\r\n\r\n",
		event.ProductID, event.OldPrice, event.NewPrice,
		event.UpdatedAtUtc.Format("2006-01-02 15:04:05 UTC"),
	))

	sb.WriteString(fmt.Sprintf("Pending orders affected: %d\r\n", len(orders)))
	for _, order := range orders {
		sb.WriteString(fmt.Sprintf(
			"  - order %s (created %s)\r\n",
			order.ID, order.CreatedAt.Format("2006-01-02 15:04:05"),
		))
	}

	return sb.String()
}
