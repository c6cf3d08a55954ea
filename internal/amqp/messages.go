package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finledger/internal/core"
)

// MonthUpdatedMessage announces a new archive entry. It carries only the
// identifiers; the consumer loads the entry from the history store.
type MonthUpdatedMessage struct {
	User       string                  `json:"user"`
	MonthID    string                  `json:"monthId"`
	MonthYear  string                  `json:"monthYear"`
	ArchiveKey string                  `json:"archiveKey"`
	Version    int64                   `json:"version"`
	Counts     map[core.ChangeKind]int `json:"counts,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

// NewMonthUpdatedMessage builds the notification for an archive entry
// written on behalf of user.
func NewMonthUpdatedMessage(user string, entry core.ArchiveEntry, version int64) *MonthUpdatedMessage {
	return &MonthUpdatedMessage{
		User:       user,
		MonthID:    entry.MonthID,
		MonthYear:  entry.MonthYear,
		ArchiveKey: entry.Key,
		Version:    version,
		Counts:     entry.Changes.Counts(),
		Timestamp:  time.Now().UTC(),
	}
}

func (m *MonthUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthUpdatedMessageFromJSON decodes a message and rejects bodies that
// cannot identify an archive entry.
func MonthUpdatedMessageFromJSON(data []byte) (*MonthUpdatedMessage, error) {
	var msg MonthUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.User == "" || msg.MonthID == "" || msg.ArchiveKey == "" {
		return nil, fmt.Errorf("incomplete message: user, monthId and archiveKey are required")
	}
	return &msg, nil
}
