package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ampplex/influencerflow/internal/auth"
	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/lock"
	"github.com/ampplex/influencerflow/internal/logging"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/negotiation"
	"github.com/ampplex/influencerflow/internal/repository"
	"github.com/ampplex/influencerflow/internal/retry"
)

// Negotiator is the remote negotiation agent.
type Negotiator interface {
	Start(ctx context.Context, req negotiation.StartRequest) (*negotiation.StartResponse, error)
	RespondStream(ctx context.Context, sessionID, message string, onChunk func(string)) (*negotiation.Completion, error)
	ListSessions(ctx context.Context) (json.RawMessage, error)
}

var _ Negotiator = (*negotiation.Client)(nil)

const (
	EventStream   = "stream"
	EventRetry    = "retry"
	EventStatus   = "status"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is one frame relayed to the browser during a turn.
type Event struct {
	Type       string                  `json:"type"`
	Content    string                  `json:"content,omitempty"`
	Attempt    int                     `json:"attempt,omitempty"`
	Status     string                  `json:"status,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Completion *negotiation.Completion `json:"completion,omitempty"`
}

type NegotiationService struct {
	Client    Negotiator
	Repos     repository.Repos
	Projector *Projector
	Locker    lock.Locker
	LockTTL   time.Duration
	Retry     retry.Options
	Log       logrus.FieldLogger
	Now       func() time.Time
}

type StartNegotiationInput struct {
	Budget       decimal.Decimal `json:"budget"`
	CampaignType string          `json:"campaign_type" validate:"required"`
	Duration     string          `json:"duration"`
	OutreachID   uuid.NullUUID   `json:"outreach_id"`
}

func (s *NegotiationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Start opens a session with the agent. It is not retried. When the session
// belongs to an outreach the caller must be one of its parties, and the id
// and opening message are recorded.
func (s *NegotiationService) Start(ctx context.Context, sess *auth.Session, in StartNegotiationInput) (*negotiation.StartResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !in.Budget.IsPositive() {
		return nil, appErrors.BadRequest("budget must be positive")
	}

	var o *model.Outreach
	if in.OutreachID.Valid {
		var err error
		if o, err = s.Repos.Outreach.GetByID(ctx, in.OutreachID.UUID); err != nil {
			return nil, err
		}
		if err := s.authorizeOutreach(ctx, sess, o); err != nil {
			return nil, err
		}
	}

	resp, err := s.Client.Start(ctx, negotiation.StartRequest{
		Budget:       in.Budget,
		CampaignType: in.CampaignType,
		Duration:     in.Duration,
	})
	if err != nil {
		logging.LogError(s.Log, "negotiation", "Start", "start negotiation", in, err)
		return nil, appErrors.Upstream("negotiation start", err)
	}

	if o != nil {
		if err := s.Repos.Outreach.SetSession(ctx, o.ID, resp.SessionID); err != nil {
			return nil, err
		}
		if resp.Content != "" {
			err := s.Repos.CRMLogs.Append(ctx, o.CampaignID, o.InfluencerID, model.CRMMessage{
				Content:   resp.Content,
				Type:      model.MessageBot,
				Timestamp: s.now(),
			})
			if err != nil {
				s.Log.WithError(err).WithField("outreach_id", o.ID).Warn("⚠️ failed to log opening message")
			}
		}
	}

	s.Log.WithField("session_id", resp.SessionID).Info("🚀 negotiation started")
	return resp, nil
}

// Respond sends one influencer message and relays the streamed reply through
// emit. Turns on the same session are serialized; a concurrent turn gets
// appErrors.ErrSessionBusy. A failed attempt is retried from scratch after a
// retry event, so the client must discard what it buffered. A session bound
// to an outreach only accepts turns from that outreach's parties.
func (s *NegotiationService) Respond(ctx context.Context, sess *auth.Session, sessionID, message string, emit func(Event)) (*negotiation.Completion, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(message) == "" {
		return nil, appErrors.BadRequest("session id and message are required")
	}
	if emit == nil {
		emit = func(Event) {}
	}
	log := s.Log.WithField("session_id", sessionID)

	lk, err := s.Locker.Obtain(ctx, "negotiation:session:"+sessionID, s.LockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, appErrors.ErrSessionBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain session lock: %w", err)
	}
	defer func() {
		if err := lk.Release(context.WithoutCancel(ctx)); err != nil {
			log.WithError(err).Warn("⚠️ failed to release session lock")
		}
	}()

	o, err := s.Repos.Outreach.GetBySessionID(ctx, sessionID)
	switch {
	case appErrors.IsNotFound(err):
		o = nil
	case err != nil:
		return nil, err
	}
	if o != nil {
		if err := s.authorizeOutreach(ctx, sess, o); err != nil {
			return nil, err
		}
		st, err := s.Projector.ApplyHeuristic(ctx, o, message)
		if err != nil {
			logging.LogError(log, "negotiation", "Respond", "apply heuristic", o.ID, err)
		} else if st != "" {
			emit(Event{Type: EventStatus, Status: st})
		}
	}

	opts := s.Retry
	opts.OnRetry = func(next int, err error) {
		log.WithError(err).WithField("attempt", next).Warn("🔁 retrying negotiation turn")
		emit(Event{Type: EventRetry, Attempt: next, Message: err.Error()})
	}

	completion, err := retry.Do(ctx, opts, func(ctx context.Context) (*negotiation.Completion, error) {
		return s.Client.RespondStream(ctx, sessionID, message, func(chunk string) {
			emit(Event{Type: EventStream, Content: chunk})
		})
	})
	if err != nil {
		logging.LogError(log, "negotiation", "Respond", "respond stream", nil, err)
		return nil, appErrors.Upstream("negotiation respond", err)
	}

	if o != nil {
		if err := s.Projector.ApplyCompletion(ctx, o, completion); err != nil {
			logging.LogError(log, "negotiation", "Respond", "apply completion", o.ID, err)
		}
	}

	emit(Event{Type: EventComplete, Completion: completion})
	return completion, nil
}

func (s *NegotiationService) authorizeOutreach(ctx context.Context, sess *auth.Session, o *model.Outreach) error {
	campaign, err := s.Repos.Campaigns.GetByID(ctx, o.CampaignID)
	if err != nil {
		return err
	}
	return authorizeParty(sess, campaign.BrandID, o.InfluencerID)
}

// Sessions proxies the agent's session listing.
func (s *NegotiationService) Sessions(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.Client.ListSessions(ctx)
	if err != nil {
		return nil, appErrors.Upstream("negotiation sessions", err)
	}
	return raw, nil
}
