package cache

// Key identifies a cached server-resource read as a pure structured value:
// a resource kind plus its identifying parameter. Keys compare by value, so
// re-reads of the same resource always hit the same entry.
type Key struct {
	Kind string
	ID   string
}

// String renders the key for logs.
func (k Key) String() string {
	if k.ID == "" {
		return k.Kind
	}
	return k.Kind + ":" + k.ID
}

// ChatsKey identifies the chat-list resource.
func ChatsKey() Key { return Key{Kind: "chats"} }

// MessagesKey identifies the message list of a single chat. Entries for
// different chats are independent.
func MessagesKey(chatID string) Key { return Key{Kind: "messages", ID: chatID} }

// CurrentUserKey identifies the current-user resource for one session. The
// ID is a token fingerprint, so a new login yields a fresh entry and a stale
// user can never be served for a different token.
func CurrentUserKey(tokenFingerprint string) Key {
	return Key{Kind: "user", ID: tokenFingerprint}
}
