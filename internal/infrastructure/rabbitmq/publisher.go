package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Exchange は予約イベント用のトピックエクスチェンジ名
	Exchange = "parking.bookings"

	// RoutingKeyBookingCreated は予約作成イベントのルーティングキー
	RoutingKeyBookingCreated = "booking.created"
	// RoutingKeyBookingCancelled は予約キャンセルイベントのルーティングキー
	RoutingKeyBookingCancelled = "booking.cancelled"
)

// BookingEvent は通知ワーカーへ配信する予約イベント
type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	UserID        string    `json:"user_id"`
	LocationID    string    `json:"location_id"`
	LocationName  string    `json:"location_name"`
	BookingDate   string    `json:"booking_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	TotalAmount   int       `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher は予約イベントをRabbitMQへ発行する
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher はRabbitMQへ接続し、エクスチェンジを宣言する
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗しました: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("エクスチェンジ宣言に失敗しました: %w", err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish はイベントをJSONで発行する
// メッセージは永続化され、ブローカー再起動後も失われない
func (p *Publisher) Publish(ctx context.Context, routingKey string, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close は接続とチャネルを閉じる
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
