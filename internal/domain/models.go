// Package domain defines the wire and persistence models shared by the chat
// client and the bundled development server. The JSON shapes mirror the
// backend HTTP contract; the GORM tags are only exercised by the dev server's
// SQLite store.
package domain

import "time"

// User is the account behind a session. The client treats it as a
// read-through projection of GET /users/me; the dev server persists it.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username / Email: unique account identifiers.
//   - PasswordHash: bcrypt hash, never serialized.
//   - CreatedAt: account creation timestamp.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Chat is a named conversation with a fixed membership. The client never
// mutates chats; it only lists them and reads/posts their messages.
type Chat struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	UserIDs   []string  `json:"user_ids"   gorm:"serializer:json"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// Message is a single utterance within a chat. The backend returns messages
// in creation order and the client renders them as received.
//
// UserID is always present; User is populated by the server on reads so the
// client can show author details without a second request.
type Message struct {
	ID        string    `json:"id"             gorm:"type:char(36);primaryKey"`
	ChatID    string    `json:"chat_id"        gorm:"type:char(36);not null;index:idx_chat_msgs,priority:1"`
	UserID    string    `json:"user_id"        gorm:"type:char(36);not null;index"`
	Text      string    `json:"text"           gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"     gorm:"index:idx_chat_msgs,priority:2"`

	// User is the message author, preloaded on reads.
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// AccessToken is a bearer token issued by the dev server's /auth/token
// endpoint. The client never sees this type; to it the token is an opaque
// string inside a Token payload.
type AccessToken struct {
	Token     string    `json:"-" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"-" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// TableName returns the database table name for AccessToken.
func (AccessToken) TableName() string { return "access_tokens" }

// Token is the credential-exchange result returned by POST /auth/token.
// AccessToken is opaque to the client and is forwarded verbatim as the
// bearer credential on authorized requests.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Meta carries collection metadata on list responses.
type Meta struct {
	Count int `json:"count"`
}

// UserEnvelope wraps a single user, as returned by GET/PUT /users/me.
type UserEnvelope struct {
	User User `json:"user"`
}

// ChatsEnvelope wraps the chat list returned by GET /chats.
type ChatsEnvelope struct {
	Meta  Meta   `json:"meta"`
	Chats []Chat `json:"chats"`
}

// MessagesEnvelope wraps a chat's message list returned by
// GET /chats/{id}/messages.
type MessagesEnvelope struct {
	Meta     Meta      `json:"meta"`
	Messages []Message `json:"messages"`
}

// MessageEnvelope wraps the message created by POST /chats/{id}/messages.
type MessageEnvelope struct {
	Message Message `json:"message"`
}
