package rabbitmq

// NotificationsExchange direct-обменник для уведомлений пользователям.
const NotificationsExchange = "notifications"

// RoutingKeyUpcoming ключ маршрутизации напоминаний о скором продлении.
const RoutingKeyUpcoming = "upcoming"

// QueueUpcoming очередь напоминаний, которую читает рассыльщик писем.
const QueueUpcoming = "notification.upcoming"

// QueueConfig описывает очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляют планировщик и рассыльщик.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueUpcoming, RoutingKey: RoutingKeyUpcoming},
	}
}
