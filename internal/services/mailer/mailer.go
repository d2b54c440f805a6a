// Package services содержит отправку писем-напоминаний о продлении подписок.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Transport выдает подключенный SMTP-клиент и адрес отправителя.
type Transport interface {
	Connect() (smtp.Client, error)
	Sender() string
}

// MailerService превращает напоминания из очереди в письма владельцам подписок.
type MailerService struct {
	transport Transport
	log       *slog.Logger
}

// NewMailerService создает новый экземпляр MailerService.
func NewMailerService(transport Transport, log *slog.Logger) *MailerService {
	return &MailerService{
		transport: transport,
		log:       log,
	}
}

// HandleRenewalNotice обрабатывает тело сообщения из очереди notification.upcoming.
// Неразбираемое сообщение или напоминание без адреса возвращают rabbitmq.ErrDiscard.
func (s *MailerService) HandleRenewalNotice(_ context.Context, body []byte) error {
	const op = "services.mailer.HandleRenewalNotice"

	var notice models.RenewalNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDiscard, err)
	}
	if notice.Email == "" {
		return fmt.Errorf("%s: %w: subscription %d has no owner email", op, rabbitmq.ErrDiscard, notice.SubscriptionID)
	}

	subject, text := renewalLetter(notice)
	if err := s.send(notice.Email, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("renewal reminder sent",
		slog.Int("subscription_id", notice.SubscriptionID),
		slog.String("to", notice.Email),
	)
	return nil
}

func renewalLetter(n models.RenewalNotice) (subject, text string) {
	subject = fmt.Sprintf("Напоминание: подписка %s продлевается %s", n.ServiceName, n.RenewalDate)
	text = fmt.Sprintf("Здравствуйте, %s!\n\n"+
		"Ваша подписка на сервис %s продлевается %s.\n"+
		"Сумма списания: %s (%s).\n\n"+
		"Если подписка больше не нужна, отмените её заранее.",
		n.Username, n.ServiceName, n.RenewalDate, n.Cost.StringFixed(2), n.BillingCycle)
	return subject, text
}

func (s *MailerService) send(to, subject, text string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		text,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}
