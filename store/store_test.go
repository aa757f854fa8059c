package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yuuki.chat/store"
)

func echoRouter(reply string) store.TurnRouter {
	return store.TurnRouter{
		Chat: func(ctx context.Context, history []store.Message, model string) (string, error) {
			return reply, nil
		},
		Research: func(ctx context.Context, query string) (string, error) {
			return "research: " + query, nil
		},
		Video: func(ctx context.Context, query string) (string, error) {
			return "video: " + query, nil
		},
	}
}

func TestStoreStartsWithOneConversation(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)

	convs := s.List()
	require.Len(t, convs, 1)
	assert.Equal(t, store.DefaultTitle, convs[0].Title)
	assert.Empty(t, convs[0].Messages)
}

func TestDeleteLastConversationCreatesFresh(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)

	only := s.List()[0]
	next, err := s.Delete(only.ID)
	require.NoError(t, err)

	assert.NotEqual(t, only.ID, next.ID)
	convs := s.List()
	require.Len(t, convs, 1)
	assert.Equal(t, next.ID, convs[0].ID)
}

func TestDeleteUnknownConversation(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)

	_, err = s.Delete("no-such-id")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestDeleteSwitchesToRemaining(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)

	first := s.List()[0]
	second := s.Create()

	next, err := s.Delete(second.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, next.ID)
	assert.Len(t, s.List(), 1)
}

func TestTurnAppendsUserThenAssistant(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)
	conv := s.List()[0]

	msg, err := s.Turn(context.Background(), conv.ID, "hello there", "yuuki-best", echoRouter("hi back"))
	require.NoError(t, err)
	assert.Equal(t, store.RoleAssistant, msg.Role)
	assert.Equal(t, "hi back", msg.Content)
	assert.False(t, msg.Streaming)

	got, err := s.Get(conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, store.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "hello there", got.Messages[0].Content)
	assert.Equal(t, store.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "hi back", got.Messages[1].Content)
}

func TestTitleDerivedFromFirstMessageOnly(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)
	conv := s.List()[0]

	_, err = s.Turn(context.Background(), conv.ID, "first message", "yuuki-best", echoRouter("ok"))
	require.NoError(t, err)

	got, err := s.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "first message", got.Title)

	_, err = s.Turn(context.Background(), conv.ID, "second message", "yuuki-best", echoRouter("ok"))
	require.NoError(t, err)

	got, err = s.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "first message", got.Title)
}

func TestTitleTruncation(t *testing.T) {
	long := strings.Repeat("a", 40)
	title := store.DeriveTitle(long)
	assert.Equal(t, strings.Repeat("a", 30)+"...", title)

	exact := strings.Repeat("b", 30)
	assert.Equal(t, exact, store.DeriveTitle(exact))
}

func TestTitleTruncationMultibyte(t *testing.T) {
	long := strings.Repeat("日", 40)
	title := store.DeriveTitle(long)
	assert.Equal(t, strings.Repeat("日", 30)+"...", title)
	assert.True(t, utf8.ValidString(title))

	exact := strings.Repeat("本", 30)
	assert.Equal(t, exact, store.DeriveTitle(exact))
}

func TestTurnErrorBecomesAssistantMessage(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)
	conv := s.List()[0]

	router := store.TurnRouter{
		Chat: func(ctx context.Context, history []store.Message, model string) (string, error) {
			return "", errors.New("backend exploded")
		},
	}

	msg, err := s.Turn(context.Background(), conv.ID, "hello", "yuuki-best", router)
	require.NoError(t, err)
	assert.Equal(t, "Error: backend exploded", msg.Content)
	assert.Empty(t, msg.Type)

	got, err := s.Get(conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Error: backend exploded", got.Messages[1].Content)
}

func TestTurnHistoryExcludesPlaceholder(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)
	conv := s.List()[0]

	var seen []store.Message
	router := store.TurnRouter{
		Chat: func(ctx context.Context, history []store.Message, model string) (string, error) {
			seen = history
			return "ok", nil
		},
	}

	_, err = s.Turn(context.Background(), conv.ID, "hello", "yuuki-best", router)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, store.RoleUser, seen[0].Role)
	for _, m := range seen {
		assert.False(t, m.Streaming)
	}
}

func TestModeTogglesAreExclusive(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)

	assert.Equal(t, store.ModeChat, s.Mode())

	s.SetResearch(true)
	assert.Equal(t, store.ModeResearch, s.Mode())

	s.SetYouTube(true)
	assert.Equal(t, store.ModeVideo, s.Mode())

	s.SetYouTube(false)
	assert.Equal(t, store.ModeChat, s.Mode())
}

func TestResearchTurnAnnotatesMessage(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)
	conv := s.List()[0]

	s.SetResearch(true)
	msg, err := s.Turn(context.Background(), conv.ID, "go generics", "yuuki-best", echoRouter(""))
	require.NoError(t, err)

	assert.Equal(t, "research: go generics", msg.Content)
	assert.Equal(t, store.TypeResearch, msg.Type)
}

func TestVideoTurnAnnotatesMessage(t *testing.T) {
	s, err := store.NewStore(nil)
	require.NoError(t, err)
	conv := s.List()[0]

	s.SetYouTube(true)
	msg, err := s.Turn(context.Background(), conv.ID, "go talks", "yuuki-best", echoRouter(""))
	require.NoError(t, err)

	assert.Equal(t, "video: go talks", msg.Content)
	assert.Equal(t, store.TypeYouTube, msg.Type)
}

func TestSQLitePersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := store.OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	s, err := store.NewStore(db)
	require.NoError(t, err)
	conv := s.List()[0]

	_, err = s.Turn(context.Background(), conv.ID, "persist me", "yuuki-best", echoRouter("stored"))
	require.NoError(t, err)

	// A second store over the same database sees the same state
	reloaded, err := store.NewStore(db)
	require.NoError(t, err)

	convs := reloaded.List()
	require.Len(t, convs, 1)
	assert.Equal(t, conv.ID, convs[0].ID)
	assert.Equal(t, "persist me", convs[0].Title)
	require.Len(t, convs[0].Messages, 2)
	assert.Equal(t, "persist me", convs[0].Messages[0].Content)
	assert.Equal(t, "stored", convs[0].Messages[1].Content)
}
