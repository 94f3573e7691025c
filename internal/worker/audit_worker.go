package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/infrastructure/client"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const defaultReconnectDelay = 5 * time.Second

// AuditWorker читает события доски из RabbitMQ и пишет историю задач в базу
type AuditWorker struct {
	url            string
	queueName      string
	auditRepo      repository.ITaskAuditRepository
	logger         *log.Logger
	reconnectDelay time.Duration
}

func NewAuditWorker(url, queueName string, auditRepo repository.ITaskAuditRepository, logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		url:            url,
		queueName:      queueName,
		auditRepo:      auditRepo,
		logger:         logger,
		reconnectDelay: defaultReconnectDelay,
	}
}

// Start работает до отмены ctx, при обрыве соединения переподключается
func (w *AuditWorker) Start(ctx context.Context) {
	w.logger.Info("audit worker started")

	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			w.logger.Info("🛑 audit worker stopped")
			return
		}
		w.logger.WithError(err).Warnf("audit worker disconnected, reconnecting in %s", w.reconnectDelay)

		select {
		case <-ctx.Done():
			w.logger.Info("🛑 audit worker stopped")
			return
		case <-time.After(w.reconnectDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	// Отдельное соединение для consumer'а
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	if _, err := client.DeclareAuditQueue(channel, w.queueName); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		w.queueName,    // queue
		"audit_worker", // consumer tag
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	w.logger.WithField("queue", w.queueName).Info("✅ audit worker consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	requeue, err := w.handle(ctx, msg.Body)
	if err != nil {
		w.logger.WithError(err).WithField("requeue", requeue).Warn("audit message rejected")
		msg.Nack(false, requeue)
		return
	}
	msg.Ack(false)
}

// handle сохраняет одно сообщение. requeue=true, если ошибка временная и сообщение стоит вернуть в очередь
func (w *AuditWorker) handle(ctx context.Context, body []byte) (requeue bool, err error) {
	var auditMsg entity.AuditMessage
	if err := sonic.Unmarshal(body, &auditMsg); err != nil {
		// битое сообщение не возвращаем в очередь
		return false, fmt.Errorf("failed to decode audit message: %w", err)
	}
	if auditMsg.EntityID == "" || auditMsg.Action == "" {
		return false, errors.New("audit message without entity or action")
	}

	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		return false, err
	}

	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		return true, fmt.Errorf("failed to save audit: %w", err)
	}

	w.logger.WithFields(log.Fields{
		"action":  taskAudit.Action,
		"task_id": taskAudit.EntityID,
		"user_id": taskAudit.UserID,
	}).Debug("audit saved")
	return false, nil
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	oldValues, err := encodeValues(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := encodeValues(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := encodeValues(msg.Changes)
	if err != nil {
		return nil, err
	}

	changedAt := msg.Timestamp
	if changedAt.IsZero() {
		changedAt = time.Now()
	}

	return &entity.TaskAudit{
		UserID:     msg.UserID,
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangesAt:  changedAt,
	}, nil
}

// encodeValues - map в JSON строку для jsonb колонки, nil остается NULL
func encodeValues(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	raw, err := sonic.MarshalString(values)
	if err != nil {
		return nil, err
	}
	return &raw, nil
}
