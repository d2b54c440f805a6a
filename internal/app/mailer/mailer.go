// Package mailer содержит приложение, отправляющее письма по напоминаниям из очереди.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/smtp"
	mailerservice "github.com/magabrotheeeer/subscription-manager/internal/services/mailer"
)

// App представляет приложение рассылки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	mailerService *mailerservice.MailerService
	workers       int
	logger        *slog.Logger
}

// New подключается к брокеру и объявляет очереди уведомлений.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		mailerService: mailerservice.NewMailerService(transport, logger),
		workers:       cfg.MailerWorkers,
		logger:        logger,
	}, nil
}

// Run читает очередь напоминаний до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.QueueUpcoming, a.workers, a.logger, a.mailerService.HandleRenewalNotice)
	if err != nil {
		a.logger.Error("consumer stopped", slog.String("queue", rabbitmq.QueueUpcoming), sl.Err(err))
	}

	a.logger.Info("shutting down renewal mailer")
	if closeErr := a.ch.Close(); closeErr != nil {
		a.logger.Error("failed to close channel", sl.Err(closeErr))
	}
	if closeErr := a.conn.Close(); closeErr != nil {
		a.logger.Error("failed to close connection", sl.Err(closeErr))
	}
	return err
}
