package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Project struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ContextPath string    `json:"context_path" db:"context_path"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Role is a user's role within a project.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type ProjectMember struct {
	ProjectID string    `json:"project_id" db:"project_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Chat struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ChatMessage is a persisted UI message. Parts are stored as a JSON array.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	ChatID    string    `json:"chat_id" db:"chat_id"`
	Role      string    `json:"role" db:"role"`
	Parts     JSONParts `json:"parts" db:"parts"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UIMessage converts the row into the message model.
func (m ChatMessage) UIMessage() aisdk.UIMessage {
	parts := []aisdk.Part(m.Parts)
	if parts == nil {
		parts = []aisdk.Part{}
	}
	return aisdk.UIMessage{ID: m.ID, Role: aisdk.Role(m.Role), Parts: parts, CreatedAt: m.CreatedAt}
}

// LLMProvider names a supported model provider.
type LLMProvider string

const (
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderOpenAI    LLMProvider = "openai"
)

// Providers lists the providers in preference order.
var Providers = []LLMProvider{ProviderAnthropic, ProviderOpenAI}

// Valid reports whether p is a supported provider.
func (p LLMProvider) Valid() bool {
	return p == ProviderAnthropic || p == ProviderOpenAI
}

type LLMConfig struct {
	ID        string      `json:"id" db:"id"`
	ProjectID string      `json:"project_id" db:"project_id"`
	Provider  LLMProvider `json:"provider" db:"provider"`
	APIKey    string      `json:"-" db:"api_key"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

type SlackConfig struct {
	ID            string    `json:"id" db:"id"`
	ProjectID     string    `json:"project_id" db:"project_id"`
	BotToken      string    `json:"-" db:"bot_token"`
	SigningSecret string    `json:"-" db:"signing_secret"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UserSettings holds a user's preferences document as JSON.
type UserSettings struct {
	UserID      string    `json:"user_id" db:"user_id"`
	Preferences string    `json:"preferences" db:"preferences"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Vote is a feedback direction.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

type MessageFeedback struct {
	MessageID   string    `json:"message_id" db:"message_id"`
	ChatID      string    `json:"chat_id" db:"chat_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Vote        Vote      `json:"vote" db:"vote"`
	Explanation string    `json:"explanation,omitempty" db:"explanation"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// JSONParts stores message parts as a JSON array column.
type JSONParts []aisdk.Part

// Scan implements the sql.Scanner interface for JSONParts
func (j *JSONParts) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = JSONParts{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan type %T into JSONParts", value)
	}
	if len(raw) == 0 {
		*j = JSONParts{}
		return nil
	}
	return json.Unmarshal(raw, (*[]aisdk.Part)(j))
}

// Value implements the driver.Valuer interface for JSONParts
func (j JSONParts) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]aisdk.Part(j))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
