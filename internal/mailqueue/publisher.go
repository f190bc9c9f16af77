package mailqueue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

// Publisher 把邮件序列化后投递到 RabbitMQ 的邮件队列，由 cmd/mail 消费并发送
type Publisher struct {
	ch      *amqp.Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

// DeclareQueue 声明持久化的邮件队列，生产者和消费者都需要声明，保证先启动的一方也能正常工作
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // 队列名称
		true,  // 是否持久化
		false, // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false, // 是否独占
		false, // 是否不等待
		nil,   // 额外参数
	)
}

func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
