package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
)

// ErrDiscard возвращается обработчиком, если сообщение нельзя обработать повторно
// (например, тело не разбирается). Такое сообщение отклоняется без возврата в очередь.
var ErrDiscard = errors.New("discard message")

// Source часть amqp.Channel, нужная для чтения очереди.
type Source interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumeMessages читает очередь queueName и передает тела сообщений handler,
// обрабатывая не больше workers сообщений одновременно.
// Блокируется до отмены ctx или закрытия канала доставки, затем дожидается текущих обработчиков.
func ConsumeMessages(ctx context.Context, src Source, queueName string, workers int, log *slog.Logger, handler func(context.Context, []byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := src.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, max(workers, 1))
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				handle(ctx, d, log, handler)
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}

func handle(ctx context.Context, d amqp.Delivery, log *slog.Logger, handler func(context.Context, []byte) error) {
	err := handler(ctx, d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !errors.Is(err, ErrDiscard)
	log.Warn("message handling failed", sl.Err(err), slog.Bool("requeue", requeue))
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
