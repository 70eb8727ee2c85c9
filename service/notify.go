package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// InvitationNotice 家庭邀请通知内容
type InvitationNotice struct {
	HouseholdID   uint      `json:"household_id"`
	HouseholdName string    `json:"household_name"`
	InviterEmail  string    `json:"inviter_email"`
	InviteeEmail  string    `json:"invitee_email"`
	InvitedAt     time.Time `json:"invited_at"`
}

// Notifier 邀请通知发送者
type Notifier interface {
	NotifyInvitation(ctx context.Context, notice InvitationNotice) error
}

// NopNotifier 不发送任何通知
type NopNotifier struct{}

func (NopNotifier) NotifyInvitation(context.Context, InvitationNotice) error { return nil }

// MultiNotifier 依次调用多个通知者，汇总所有错误
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyInvitation(ctx context.Context, notice InvitationNotice) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyInvitation(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EmailNotifier 通过邮件发送邀请
type EmailNotifier struct {
	Email *EmailService
}

func (n *EmailNotifier) NotifyInvitation(ctx context.Context, notice InvitationNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.Email.SendInvitationEmail(notice.InviteeEmail, notice.InviterEmail, notice.HouseholdName, notice.HouseholdID)
}

// amqpPublisher 是 *amqp091.Channel 中用到的部分
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier 将邀请事件发布到消息队列，由下游服务负责投递
type AMQPNotifier struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    amqpPublisher
	exchange   string
	routingKey string
}

// NewAMQPNotifier 连接 broker 并声明持久化的 direct 交换机
func NewAMQPNotifier(url, exchange, routingKey string) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接 AMQP 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 AMQP channel 失败: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("声明交换机失败: %w", err)
	}
	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (n *AMQPNotifier) NotifyInvitation(ctx context.Context, notice InvitationNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("序列化邀请事件失败: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.channel.PublishWithContext(ctx, n.exchange, n.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    notice.InvitedAt,
		Type:         n.routingKey,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("发布邀请事件失败: %w", err)
	}
	return nil
}

// Close 关闭连接
func (n *AMQPNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
