package amqp

import (
	"encoding/json"
	"time"

	"fincore/internal/core"
)

// NotificationMessage carries a persisted notification to downstream
// presenters. It is a full copy so consumers need no database access.
type NotificationMessage struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Severity    string            `json:"severity"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	DeepLink    string            `json:"deep_link,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	PublishedAt time.Time         `json:"published_at"`
}

// NewNotificationMessage wraps a notification for publishing
func NewNotificationMessage(n core.Notification) *NotificationMessage {
	return &NotificationMessage{
		ID:          n.ID,
		Type:        string(n.Type),
		Severity:    string(n.Severity),
		Title:       n.Title,
		Message:     n.Message,
		DeepLink:    n.DeepLink,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
		PublishedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Notification converts the message back into the domain type.
func (m *NotificationMessage) Notification() core.Notification {
	return core.Notification{
		ID:        m.ID,
		Type:      core.NotificationType(m.Type),
		Severity:  core.Severity(m.Severity),
		Title:     m.Title,
		Message:   m.Message,
		DeepLink:  m.DeepLink,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
