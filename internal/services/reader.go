// Package services – read-side fetch registry.
//
// The Reader resolves each cache key to its fetch function, so cache keys
// stay pure structured values and the query cache never depends on the
// transport. Views read through these methods and re-read when the cache
// notifies them.
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-client/internal/api"
	"github.com/tbourn/go-chat-client/internal/cache"
	"github.com/tbourn/go-chat-client/internal/domain"
)

// Reader serves the chat-list and per-chat message reads through the query
// cache.
type Reader struct {
	client  *api.Client
	queries *cache.Store
	log     zerolog.Logger
}

// NewReader constructs a Reader over the given collaborators.
func NewReader(client *api.Client, queries *cache.Store, log zerolog.Logger) *Reader {
	return &Reader{client: client, queries: queries, log: log}
}

// ChatsResult is the chat-list read state surfaced to the UI.
type ChatsResult struct {
	Chats   []domain.Chat
	Loading bool
	Err     error
}

// Chats reads the chat list through the cache.
func (r *Reader) Chats(ctx context.Context) ChatsResult {
	res := r.queries.Read(ctx, cache.ChatsKey(), func(ctx context.Context) (any, error) {
		resp, err := r.client.Get(ctx, "/chats")
		if err != nil {
			return nil, err
		}
		var env domain.ChatsEnvelope
		if err := resp.DecodeJSON(&env); err != nil {
			return nil, err
		}
		return env.Chats, nil
	})

	out := ChatsResult{Loading: res.Loading, Err: res.Err}
	if chats, ok := res.Data.([]domain.Chat); ok {
		out.Chats = chats
	}
	return out
}

// MessagesResult is the per-chat message read state surfaced to the UI.
type MessagesResult struct {
	Messages []domain.Message
	Loading  bool
	Err      error
}

// Messages reads one chat's message list through the cache. Messages are
// returned in the order the backend sent them; no client-side re-sort.
func (r *Reader) Messages(ctx context.Context, chatID string) MessagesResult {
	res := r.queries.Read(ctx, cache.MessagesKey(chatID), func(ctx context.Context) (any, error) {
		resp, err := r.client.Get(ctx, "/chats/"+chatID+"/messages")
		if err != nil {
			return nil, err
		}
		var env domain.MessagesEnvelope
		if err := resp.DecodeJSON(&env); err != nil {
			return nil, err
		}
		return env.Messages, nil
	})

	out := MessagesResult{Loading: res.Loading, Err: res.Err}
	if msgs, ok := res.Data.([]domain.Message); ok {
		out.Messages = msgs
	}
	return out
}
