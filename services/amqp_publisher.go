package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"sports-data-service/database"
	"sports-data-service/logger"
)

// AMQPPublisher 将比赛创建事件发布到 fanout 交换机
type AMQPPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher 创建 AMQPPublisher 实例
func NewAMQPPublisher(url, exchange string) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
	}
}

// Connect 建立 AMQP 连接并声明交换机
func (p *AMQPPublisher) Connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// 声明持久化 fanout 交换机
	if err := channel.ExchangeDeclare(p.exchange, "fanout", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = channel
	p.mu.Unlock()

	logger.Printf("AMQP publisher connected (exchange: %s)", p.exchange)
	return nil
}

// BroadcastMatchCreated 发布 match_created 事件，失败只记录日志不影响请求
func (p *AMQPPublisher) BroadcastMatchCreated(match *database.Match) {
	p.mu.Lock()
	channel := p.channel
	p.mu.Unlock()

	if channel == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"type": "match_created",
		"data": match,
	})
	if err != nil {
		logger.Errorf("Failed to marshal match event: %v", err)
		return
	}

	err = channel.Publish(p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		logger.Errorf("Failed to publish match event: %v", err)
	}
}

// Close 关闭通道和连接
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
