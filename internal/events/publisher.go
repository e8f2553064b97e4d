package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seller-settlement/internal/config"
	"github.com/seller-settlement/internal/logger"
	"github.com/seller-settlement/internal/metrics"
	"github.com/seller-settlement/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultExchange = "settlement_events"

// SettlementEvent 结算事件消息体
type SettlementEvent struct {
	Event                 string     `json:"event"`
	SettlementID          uint64     `json:"settlement_id,string"`
	SettlementNo          string     `json:"settlement_no"`
	SellerID              uint64     `json:"seller_id,string"`
	SettlementPeriodID    uint64     `json:"settlement_period_id,string"`
	Status                string     `json:"status"`
	PreviousStatus        string     `json:"previous_status,omitempty"`
	TotalOrderAmount      int64      `json:"total_order_amount"`
	TotalCommission       int64      `json:"total_commission"`
	FinalSettlementAmount int64      `json:"final_settlement_amount"`
	ItemCount             int        `json:"item_count"`
	SettledAt             *time.Time `json:"settled_at,omitempty"`
	OccurredAt            time.Time  `json:"occurred_at"`
}

// BuildSettlementEvent 从结算单构建事件
func BuildSettlementEvent(routingKey string, settlement *models.Settlement, previousStatus string, occurredAt time.Time) SettlementEvent {
	return SettlementEvent{
		Event:                 routingKey,
		SettlementID:          settlement.ID,
		SettlementNo:          settlement.SettlementNo,
		SellerID:              settlement.SellerID,
		SettlementPeriodID:    settlement.SettlementPeriodID,
		Status:                settlement.Status,
		PreviousStatus:        previousStatus,
		TotalOrderAmount:      settlement.TotalOrderAmount,
		TotalCommission:       settlement.TotalCommission,
		FinalSettlementAmount: settlement.FinalSettlementAmount,
		ItemCount:             settlement.ItemCount,
		SettledAt:             settlement.SettledAt,
		OccurredAt:            occurredAt.UTC(),
	}
}

// Publisher RabbitMQ 结算事件发布器，未启用时发布为空操作
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher 连接 RabbitMQ 并声明 topic 交换机
func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	exchange := strings.TrimSpace(cfg.Exchange)
	if exchange == "" {
		exchange = defaultExchange
	}
	if !cfg.Enabled {
		return &Publisher{exchange: exchange}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	logger.Infow("settlement_events_connected", "exchange", exchange)

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Enabled 是否已连接
func (p *Publisher) Enabled() bool {
	return p != nil && p.channel != nil
}

// PublishSettlementEvent 发布持久化的结算事件，routingKey 如 settlement.created
func (p *Publisher) PublishSettlementEvent(ctx context.Context, routingKey string, settlement *models.Settlement, previousStatus string) (err error) {
	if !p.Enabled() || settlement == nil {
		return nil
	}
	defer func() { metrics.IncEvent(routingKey, err) }()

	body, err := json.Marshal(BuildSettlementEvent(routingKey, settlement, previousStatus, time.Now()))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    fmt.Sprintf("%s:%d:%d", routingKey, settlement.ID, time.Now().UnixNano()),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close 关闭通道与连接
func (p *Publisher) Close() {
	if !p.Enabled() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	p.channel = nil
	p.conn = nil
}
