// Package memory is an in-process implementation of the repositories. It backs
// the server when no DATABASE_URL is set and is used as the fake in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/repository"
)

type pairKey struct {
	campaignID   uuid.UUID
	influencerID uuid.UUID
}

type state struct {
	brands      map[uuid.UUID]model.Brand
	influencers map[uuid.UUID]model.Influencer
	campaigns   map[uuid.UUID]model.Campaign
	outreach    map[uuid.UUID]model.Outreach
	crm         map[pairKey]model.CRMLog
	contracts   map[uuid.UUID]model.Contract
	outbox      []model.OutboxEvent
}

func newState() *state {
	return &state{
		brands:      make(map[uuid.UUID]model.Brand),
		influencers: make(map[uuid.UUID]model.Influencer),
		campaigns:   make(map[uuid.UUID]model.Campaign),
		outreach:    make(map[uuid.UUID]model.Outreach),
		crm:         make(map[pairKey]model.CRMLog),
		contracts:   make(map[uuid.UUID]model.Contract),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.brands {
		c.brands[k] = v
	}
	for k, v := range s.influencers {
		c.influencers[k] = v
	}
	for k, v := range s.campaigns {
		c.campaigns[k] = v
	}
	for k, v := range s.outreach {
		c.outreach[k] = v
	}
	for k, v := range s.crm {
		v.Messages = append([]model.CRMMessage(nil), v.Messages...)
		c.crm[k] = v
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	c.outbox = append([]model.OutboxEvent(nil), s.outbox...)
	return c
}

// Store holds all rows behind one mutex. A transaction works on a copy that
// replaces the live state only when fn succeeds.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error
	last   time.Time
	Now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		st:     newState(),
		faults: make(map[string]error),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Fail makes every later call of op return err until cleared with a nil err.
// op is "<Repo>.<Method>", e.g. "Outreach.ListByCampaign".
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// tick returns a strictly increasing timestamp so rows keep insertion order.
// Callers hold s.mu.
func (s *Store) tick() time.Time {
	t := s.Now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) Repos() repository.Repos {
	return s.bind(nil)
}

func (s *Store) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.faults["Store.InTx"]; err != nil {
		return err
	}
	tx := &txState{st: s.st.clone()}
	if err := fn(s.bind(tx)); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

type txState struct {
	st *state
}

// view runs fn against the transaction copy, or against the live state under
// the store lock.
type view struct {
	store *Store
	tx    *txState
}

func (v view) do(op string, fn func(st *state) error) error {
	if v.tx != nil {
		if err := v.store.faults[op]; err != nil {
			return err
		}
		return fn(v.tx.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if err := v.store.faults[op]; err != nil {
		return err
	}
	return fn(v.store.st)
}

func (s *Store) bind(tx *txState) repository.Repos {
	v := view{store: s, tx: tx}
	return repository.Repos{
		Brands:      &brandRepo{v},
		Influencers: &influencerRepo{v},
		Campaigns:   &campaignRepo{v},
		Outreach:    &outreachRepo{v},
		CRMLogs:     &crmRepo{v},
		Contracts:   &contractRepo{v},
		Outbox:      &outboxRepo{v},
	}
}

// ====================== Seeding ======================

func (s *Store) AddBrand(b model.Brand) model.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.tick()
	}
	s.st.brands[b.ID] = b
	return b
}

func (s *Store) AddInfluencer(i model.Influencer) model.Influencer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = s.tick()
	}
	s.st.influencers[i.ID] = i
	return i
}

// OutboxEvents returns a copy of every outbox row in insertion order.
func (s *Store) OutboxEvents() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OutboxEvent(nil), s.st.outbox...)
}

func marshalPayload(payload any) (json.RawMessage, error) {
	if raw, ok := payload.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return b, nil
}

func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}
