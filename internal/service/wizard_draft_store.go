package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/pkg/redis"
)

// WizardDraft is the accumulated state of one registration session. It lives
// in the draft store under an explicit session key until completed, destroyed
// or expired.
type WizardDraft struct {
	SessionID         string                         `json:"session_id"`
	TenantID          string                         `json:"tenant_id"`
	EventID           string                         `json:"event_id"`
	ParticipantTypeID string                         `json:"participant_type_id"`
	General           *dto.WizardGeneralRequest      `json:"general,omitempty"`
	Professional      *dto.WizardProfessionalRequest `json:"professional,omitempty"`
	Documents         []dto.WizardDocumentInfo       `json:"documents,omitempty"`
	MeetingIDs        []string                       `json:"meeting_ids,omitempty"`
	WishlistSaved     bool                           `json:"wishlist_saved"`
	CreatedAt         time.Time                      `json:"created_at"`
}

// DraftStore persists wizard drafts keyed by session ID. Get returns
// (nil, nil) for a missing or expired draft; Delete of a missing draft is
// not an error.
type DraftStore interface {
	Save(ctx context.Context, draft *WizardDraft, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*WizardDraft, error)
	Delete(ctx context.Context, sessionID string) error
	// TTL returns the remaining lifetime of the draft, zero when missing
	TTL(ctx context.Context, sessionID string) (time.Duration, error)
}

const wizardDraftKeyPrefix = "wizard:draft:"

// RedisDraftStore stores drafts as JSON values with a TTL. Every save
// refreshes the TTL so an active session does not expire mid-flow.
type RedisDraftStore struct {
	client *redis.Client
}

// NewRedisDraftStore creates a new RedisDraftStore
func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{client: client}
}

func draftKey(sessionID string) string {
	return wizardDraftKeyPrefix + sessionID
}

// Save persists the draft with the given TTL
func (s *RedisDraftStore) Save(ctx context.Context, draft *WizardDraft, ttl time.Duration) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return s.client.Set(ctx, draftKey(draft.SessionID), data, ttl).Err()
}

// Get retrieves a draft by session ID
func (s *RedisDraftStore) Get(ctx context.Context, sessionID string) (*WizardDraft, error) {
	data, err := s.client.Get(ctx, draftKey(sessionID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var draft WizardDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Delete removes a draft
func (s *RedisDraftStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, draftKey(sessionID)).Err()
}

// TTL returns the remaining lifetime of the draft
func (s *RedisDraftStore) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, draftKey(sessionID)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// MemoryDraftStore is an in-memory DraftStore for tests
type MemoryDraftStore struct {
	mu      sync.RWMutex
	drafts  map[string]*WizardDraft
	expires map[string]time.Time
}

// NewMemoryDraftStore creates a new in-memory draft store
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts:  make(map[string]*WizardDraft),
		expires: make(map[string]time.Time),
	}
}

// Save persists the draft with the given TTL
func (s *MemoryDraftStore) Save(ctx context.Context, draft *WizardDraft, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *draft
	s.drafts[draft.SessionID] = &copied
	s.expires[draft.SessionID] = time.Now().Add(ttl)
	return nil
}

// Get retrieves a draft, honoring expiry
func (s *MemoryDraftStore) Get(ctx context.Context, sessionID string) (*WizardDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[sessionID]
	if !ok || time.Now().After(s.expires[sessionID]) {
		return nil, nil
	}
	copied := *draft
	return &copied, nil
}

// Delete removes a draft
func (s *MemoryDraftStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	delete(s.expires, sessionID)
	return nil
}

// TTL returns the remaining lifetime of the draft
func (s *MemoryDraftStore) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.expires[sessionID]
	if !ok {
		return 0, nil
	}
	remaining := time.Until(exp)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}
