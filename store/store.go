package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNotFound = errors.New("conversation not found")

// TurnMode is the single outbound call a turn makes
type TurnMode string

const (
	ModeChat     TurnMode = "chat"
	ModeResearch TurnMode = "research"
	ModeVideo    TurnMode = "video"
)

// TurnRouter holds the outbound calls a turn can dispatch to. Exactly one of
// them runs per turn, selected by the store's toggles.
type TurnRouter struct {
	// Chat sends the full history to the chat handler and returns the
	// assistant content.
	Chat func(ctx context.Context, history []Message, model string) (string, error)

	// Research sends the raw user input to the web-search handler and
	// returns the annotated content.
	Research func(ctx context.Context, query string) (string, error)

	// Video sends the raw user input to the video-search handler and
	// returns the annotated content.
	Video func(ctx context.Context, query string) (string, error)
}

// Store holds the ordered set of conversations and decides, per user turn,
// whether it becomes a plain chat call, a research call, or a video call.
// The conversation set is never empty.
type Store struct {
	mu    sync.Mutex
	order []string
	convs map[string]*Conversation

	// Mode toggles. Mutually exclusive: enabling one disables the other.
	researchOn bool
	youtubeOn  bool

	// Optional write-through persistence
	db *sql.DB
}

// NewStore creates a store, loading persisted conversations from db when one
// is provided. The store always starts with at least one conversation.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{
		convs: make(map[string]*Conversation),
		db:    db,
	}

	if db != nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load conversations: %w", err)
		}
	}

	if len(s.order) == 0 {
		conv := NewConversation()
		s.order = append(s.order, conv.ID)
		s.convs[conv.ID] = conv
		s.persistConversation(conv)
	}

	return s, nil
}

// List returns all conversations in creation order
func (s *Store) List() []*Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := make([]*Conversation, 0, len(s.order))
	for _, id := range s.order {
		convs = append(convs, s.copyLocked(s.convs[id]))
	}
	return convs
}

// Get retrieves a conversation by ID
func (s *Store) Get(id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.copyLocked(conv), nil
}

// Create starts a new empty conversation
func (s *Store) Create() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := NewConversation()
	s.order = append(s.order, conv.ID)
	s.convs[conv.ID] = conv
	s.persistConversation(conv)
	return s.copyLocked(conv)
}

// Delete removes a conversation. Deleting the last remaining conversation
// creates a fresh empty one, so the set never goes empty. Returns the
// conversation the caller should switch to.
func (s *Store) Delete(id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; !ok {
		return nil, ErrNotFound
	}

	delete(s.convs, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.dropPersisted(id)

	if len(s.order) == 0 {
		conv := NewConversation()
		s.order = append(s.order, conv.ID)
		s.convs[conv.ID] = conv
		s.persistConversation(conv)
		return s.copyLocked(conv), nil
	}

	return s.copyLocked(s.convs[s.order[0]]), nil
}

// SetResearch toggles research mode. Enabling it disables video mode.
func (s *Store) SetResearch(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.researchOn = on
	if on {
		s.youtubeOn = false
	}
}

// SetYouTube toggles video mode. Enabling it disables research mode.
func (s *Store) SetYouTube(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.youtubeOn = on
	if on {
		s.researchOn = false
	}
}

// Mode reports which call the next turn will make
func (s *Store) Mode() TurnMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

func (s *Store) modeLocked() TurnMode {
	switch {
	case s.researchOn:
		return ModeResearch
	case s.youtubeOn:
		return ModeVideo
	default:
		return ModeChat
	}
}

// Turn runs one user turn against a conversation. The user message is
// appended before any outbound call is issued, and exactly one assistant
// message lands after the call resolves; a handler failure becomes a visible
// assistant message rather than a silent drop. Returns the assistant message.
func (s *Store) Turn(ctx context.Context, convID, input, model string, router TurnRouter) (*Message, error) {
	s.mu.Lock()
	conv, ok := s.convs[convID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	userMsg := NewMessage(RoleUser, input)
	s.appendLocked(conv, userMsg)
	if conv.Title == DefaultTitle {
		conv.Title = DeriveTitle(input)
		s.persistConversation(conv)
	}
	mode := s.modeLocked()

	// A pending chat turn holds a placeholder slot; it is replaced
	// wholesale when the response arrives, never updated incrementally.
	var placeholderIdx int = -1
	if mode == ModeChat {
		placeholder := NewMessage(RoleAssistant, "")
		placeholder.Streaming = true
		conv.Messages = append(conv.Messages, placeholder)
		placeholderIdx = len(conv.Messages) - 1
	}
	history := make([]Message, len(conv.Messages))
	copy(history, conv.Messages)
	if placeholderIdx >= 0 {
		history = history[:placeholderIdx]
	}
	s.mu.Unlock()

	var content, msgType string
	var err error
	switch mode {
	case ModeResearch:
		content, err = router.Research(ctx, input)
		msgType = TypeResearch
	case ModeVideo:
		content, err = router.Video(ctx, input)
		msgType = TypeYouTube
	default:
		content, err = router.Chat(ctx, history, model)
	}
	if err != nil {
		content = fmt.Sprintf("Error: %s", err.Error())
		msgType = ""
	}

	assistantMsg := NewMessage(RoleAssistant, content)
	assistantMsg.Type = msgType

	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok = s.convs[convID]
	if !ok {
		// Conversation deleted while the call was in flight
		return &assistantMsg, nil
	}
	if placeholderIdx >= 0 && placeholderIdx < len(conv.Messages) && conv.Messages[placeholderIdx].Streaming {
		conv.Messages[placeholderIdx] = assistantMsg
		conv.UpdatedAt = time.Now().UTC()
		s.persistMessage(conv.ID, assistantMsg, placeholderIdx)
	} else {
		s.appendLocked(conv, assistantMsg)
	}

	return &assistantMsg, nil
}

// appendLocked appends a message and persists it. Caller holds the lock.
func (s *Store) appendLocked(conv *Conversation, msg Message) {
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now().UTC()
	s.persistMessage(conv.ID, msg, len(conv.Messages)-1)
}

// copyLocked returns a copy the caller may hold without the lock.
func (s *Store) copyLocked(conv *Conversation) *Conversation {
	out := *conv
	out.Messages = make([]Message, len(conv.Messages))
	copy(out.Messages, conv.Messages)
	return &out
}
