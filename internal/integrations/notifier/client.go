// Package notifier содержит клиент внешнего сервиса уведомлений (email/SMS).
// Ошибки доставки логируются и никогда не откатывают состояние записи.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Event тип события, о котором уведомляем клиента
type Event string

const (
	EventAppointmentCreated  Event = "appointment_created"
	EventAppointmentApproved Event = "appointment_approved"
	EventAppointmentDeclined Event = "appointment_declined"
)

// Notification запрос на отправку уведомления
type Notification struct {
	Event         Event   `json:"event"`
	AppointmentID int64   `json:"appointment_id"`
	BusinessID    int64   `json:"business_id"`
	ClientName    string  `json:"client_name"`
	ClientEmail   string  `json:"client_email"`
	ClientPhone   *string `json:"client_phone,omitempty"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	ServiceName   string  `json:"service_name"`
	Reason        *string `json:"reason,omitempty"`
}

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifier client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("notifier client: invalid response")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент сервиса уведомлений
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send отправляет уведомление
func (c *Client) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal notification: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: unexpected status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	return nil
}

// NopClient заглушка, используемая когда уведомления выключены в конфигурации
type NopClient struct{}

// Send ничего не делает
func (NopClient) Send(ctx context.Context, n Notification) error {
	return nil
}
