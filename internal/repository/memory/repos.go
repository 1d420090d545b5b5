package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/repository"
)

// ====================== Brands & influencers ======================

type brandRepo struct{ v view }

func (r *brandRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var out *model.Brand
	err := r.v.do("Brands.GetByID", func(st *state) error {
		b, ok := st.brands[id]
		if !ok {
			return appErrors.NewNotFound("brand", id)
		}
		out = &b
		return nil
	})
	return out, err
}

type influencerRepo struct{ v view }

func (r *influencerRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Influencer, error) {
	var out *model.Influencer
	err := r.v.do("Influencers.GetByID", func(st *state) error {
		i, ok := st.influencers[id]
		if !ok {
			return appErrors.NewNotFound("influencer", id)
		}
		out = &i
		return nil
	})
	return out, err
}

func (r *influencerRepo) ListAll(ctx context.Context) ([]model.Influencer, error) {
	var out []model.Influencer
	err := r.v.do("Influencers.ListAll", func(st *state) error {
		out = make([]model.Influencer, 0, len(st.influencers))
		for _, i := range st.influencers {
			out = append(out, i)
		}
		sortByCreated(out, func(i model.Influencer) time.Time { return i.CreatedAt })
		return nil
	})
	return out, err
}

// ====================== Campaigns ======================

type campaignRepo struct{ v view }

func (r *campaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	return r.v.do("Campaigns.Create", func(st *state) error {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.Status == "" {
			c.Status = model.CampaignDraft
		}
		c.CreatedAt = r.v.store.tick()
		st.campaigns[c.ID] = *c
		return nil
	})
}

func (r *campaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var out *model.Campaign
	err := r.v.do("Campaigns.GetByID", func(st *state) error {
		c, ok := st.campaigns[id]
		if !ok {
			return appErrors.NewNotFound("campaign", id)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *campaignRepo) ListCampaigns(ctx context.Context, offset, limit int, campaignType, status string) ([]*model.Campaign, int, error) {
	var (
		page  []*model.Campaign
		total int
	)
	err := r.v.do("Campaigns.ListCampaigns", func(st *state) error {
		matched := []model.Campaign{}
		for _, c := range st.campaigns {
			if campaignType != "" && c.CampaignType != campaignType {
				continue
			}
			if status != "" && c.Status != status {
				continue
			}
			matched = append(matched, c)
		}
		sortByCreated(matched, func(c model.Campaign) time.Time { return c.CreatedAt })
		total = len(matched)

		page = []*model.Campaign{}
		for i := offset; i < len(matched) && i < offset+limit; i++ {
			c := matched[i]
			page = append(page, &c)
		}
		return nil
	})
	return page, total, err
}

func (r *campaignRepo) update(op string, id uuid.UUID, fn func(c *model.Campaign)) error {
	return r.v.do(op, func(st *state) error {
		c, ok := st.campaigns[id]
		if !ok {
			return appErrors.NewNotFound("campaign", id)
		}
		fn(&c)
		now := r.v.store.tick()
		c.UpdatedAt = &now
		st.campaigns[id] = c
		return nil
	})
}

func (r *campaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.update("Campaigns.UpdateStatus", id, func(c *model.Campaign) { c.Status = status })
}

func (r *campaignRepo) SetFinalPrice(ctx context.Context, id uuid.UUID, status string, price decimal.Decimal) error {
	return r.update("Campaigns.SetFinalPrice", id, func(c *model.Campaign) {
		c.Status = status
		c.FinalPrice = decimal.NewNullDecimal(price)
	})
}

func (r *campaignRepo) AttachContract(ctx context.Context, id, contractID uuid.UUID) error {
	return r.update("Campaigns.AttachContract", id, func(c *model.Campaign) {
		c.Status = model.CampaignContractGenerated
		c.ContractID = uuid.NullUUID{UUID: contractID, Valid: true}
	})
}

// ====================== Outreach ======================

type outreachRepo struct{ v view }

func (r *outreachRepo) CreateIfAbsent(ctx context.Context, o *model.Outreach) (*model.Outreach, bool, error) {
	var (
		out     *model.Outreach
		created bool
	)
	err := r.v.do("Outreach.CreateIfAbsent", func(st *state) error {
		for _, existing := range st.outreach {
			if existing.CampaignID == o.CampaignID && existing.InfluencerID == o.InfluencerID {
				out = &existing
				return nil
			}
		}
		row := *o
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Status == "" {
			row.Status = model.OutreachSent
		}
		row.CreatedAt = r.v.store.tick()
		row.UpdatedAt = row.CreatedAt
		st.outreach[row.ID] = row
		out, created = &row, true
		return nil
	})
	return out, created, err
}

func (r *outreachRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Outreach, error) {
	var out *model.Outreach
	err := r.v.do("Outreach.GetByID", func(st *state) error {
		o, ok := st.outreach[id]
		if !ok {
			return appErrors.NewNotFound("outreach", id)
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *outreachRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Outreach, error) {
	var out *model.Outreach
	err := r.v.do("Outreach.GetBySessionID", func(st *state) error {
		for _, o := range st.outreach {
			if o.SessionID != nil && *o.SessionID == sessionID {
				out = &o
				return nil
			}
		}
		return &appErrors.NotFoundError{Entity: "outreach for session", ID: sessionID}
	})
	return out, err
}

func (r *outreachRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*model.Outreach, error) {
	var out []*model.Outreach
	err := r.v.do("Outreach.ListByCampaign", func(st *state) error {
		rows := []model.Outreach{}
		for _, o := range st.outreach {
			if o.CampaignID == campaignID {
				rows = append(rows, o)
			}
		}
		// oldest first
		sortByCreated(rows, func(o model.Outreach) time.Time { return o.CreatedAt })
		out = make([]*model.Outreach, len(rows))
		for i := range rows {
			out[len(rows)-1-i] = &rows[i]
		}
		return nil
	})
	return out, err
}

func (r *outreachRepo) update(op string, id uuid.UUID, fn func(o *model.Outreach)) error {
	return r.v.do(op, func(st *state) error {
		o, ok := st.outreach[id]
		if !ok {
			return appErrors.NewNotFound("outreach", id)
		}
		fn(&o)
		o.UpdatedAt = r.v.store.tick()
		st.outreach[id] = o
		return nil
	})
}

func (r *outreachRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.update("Outreach.UpdateStatus", id, func(o *model.Outreach) { o.Status = status })
}

func (r *outreachRepo) SetAgreed(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return r.update("Outreach.SetAgreed", id, func(o *model.Outreach) {
		o.Status = model.OutreachReplied
		o.AgreedPrice = decimal.NewNullDecimal(price)
	})
}

func (r *outreachRepo) SetSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.update("Outreach.SetSession", id, func(o *model.Outreach) { o.SessionID = &sessionID })
}

func (r *outreachRepo) StatsByCampaign(ctx context.Context, campaignID uuid.UUID) (map[string]int, error) {
	stats := map[string]int{
		"total":                 0,
		model.OutreachSent:      0,
		model.OutreachPending:   0,
		model.OutreachReplied:   0,
		model.OutreachDeclined:  0,
		model.OutreachCompleted: 0,
	}
	err := r.v.do("Outreach.StatsByCampaign", func(st *state) error {
		for _, o := range st.outreach {
			if o.CampaignID == campaignID {
				stats[o.Status]++
				stats["total"]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ====================== CRM logs ======================

type crmRepo struct{ v view }

func (r *crmRepo) Append(ctx context.Context, campaignID, influencerID uuid.UUID, msgs ...model.CRMMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	return r.v.do("CRMLogs.Append", func(st *state) error {
		key := pairKey{campaignID, influencerID}
		now := r.v.store.tick()
		l, ok := st.crm[key]
		if !ok {
			l = model.CRMLog{ID: uuid.New(), CampaignID: campaignID, InfluencerID: influencerID, CreatedAt: now}
		}
		l.Messages = append(append([]model.CRMMessage(nil), l.Messages...), msgs...)
		l.UpdatedAt = now
		st.crm[key] = l
		return nil
	})
}

func (r *crmRepo) Get(ctx context.Context, campaignID, influencerID uuid.UUID) (*model.CRMLog, error) {
	var out *model.CRMLog
	err := r.v.do("CRMLogs.Get", func(st *state) error {
		l, ok := st.crm[pairKey{campaignID, influencerID}]
		if !ok {
			out = &model.CRMLog{CampaignID: campaignID, InfluencerID: influencerID, Messages: []model.CRMMessage{}}
			return nil
		}
		l.Messages = append([]model.CRMMessage(nil), l.Messages...)
		out = &l
		return nil
	})
	return out, err
}

// ====================== Contracts ======================

type contractRepo struct{ v view }

func (r *contractRepo) Create(ctx context.Context, c *model.Contract) error {
	return r.v.do("Contracts.Create", func(st *state) error {
		for _, existing := range st.contracts {
			if existing.OutreachID == c.OutreachID && existing.Status != model.ContractRejected {
				return fmt.Errorf("%w: outreach %s already has an open contract", appErrors.ErrConflict, c.OutreachID)
			}
		}
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.CreatedAt = r.v.store.tick()
		c.UpdatedAt = c.CreatedAt
		st.contracts[c.ID] = *c
		return nil
	})
}

func (r *contractRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var out *model.Contract
	err := r.v.do("Contracts.GetByID", func(st *state) error {
		c, ok := st.contracts[id]
		if !ok {
			return appErrors.NewNotFound("contract", id)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *contractRepo) GetByOutreach(ctx context.Context, outreachID uuid.UUID) (*model.Contract, error) {
	var out *model.Contract
	err := r.v.do("Contracts.GetByOutreach", func(st *state) error {
		for _, c := range st.contracts {
			if c.OutreachID == outreachID && (out == nil || c.CreatedAt.After(out.CreatedAt)) {
				found := c
				out = &found
			}
		}
		if out == nil {
			return appErrors.NewNotFound("contract for outreach", outreachID)
		}
		return nil
	})
	return out, err
}

func (r *contractRepo) Transition(ctx context.Context, id uuid.UUID, from, to, signatureURL string) error {
	return r.v.do("Contracts.Transition", func(st *state) error {
		c, ok := st.contracts[id]
		if !ok || c.Status != from {
			return fmt.Errorf("%w: contract %s is no longer %s", appErrors.ErrInvalidTransition, id, from)
		}
		c.Status = to
		if signatureURL != "" {
			c.SignatureURL = signatureURL
		}
		c.UpdatedAt = r.v.store.tick()
		st.contracts[id] = c
		return nil
	})
}

func (r *contractRepo) MarkPaid(ctx context.Context, id uuid.UUID, orderID, paymentID string) error {
	return r.v.do("Contracts.MarkPaid", func(st *state) error {
		c, ok := st.contracts[id]
		if !ok {
			return appErrors.NewNotFound("contract", id)
		}
		c.PaymentStatus = model.PaymentCompleted
		c.RazorpayOrderID = orderID
		c.RazorpayPaymentID = paymentID
		c.UpdatedAt = r.v.store.tick()
		st.contracts[id] = c
		return nil
	})
}

// ====================== Outbox ======================

type outboxRepo struct{ v view }

func (r *outboxRepo) Add(ctx context.Context, topic string, payload any) error {
	body, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	return r.v.do("Outbox.Add", func(st *state) error {
		st.outbox = append(st.outbox, model.OutboxEvent{
			ID:        uuid.New(),
			Topic:     topic,
			Payload:   body,
			CreatedAt: r.v.store.tick(),
		})
		return nil
	})
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var out []model.OutboxEvent
	err := r.v.do("Outbox.FetchUnpublished", func(st *state) error {
		out = []model.OutboxEvent{}
		for _, e := range st.outbox {
			if e.PublishedAt == nil && len(out) < limit {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

func (r *outboxRepo) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return r.v.do("Outbox.MarkPublished", func(st *state) error {
		now := r.v.store.tick()
		for i := range st.outbox {
			if st.outbox[i].ID == id {
				st.outbox[i].PublishedAt = &now
			}
		}
		return nil
	})
}

var (
	_ repository.BrandRepositoryInterface      = (*brandRepo)(nil)
	_ repository.InfluencerRepositoryInterface = (*influencerRepo)(nil)
	_ repository.CampaignRepositoryInterface   = (*campaignRepo)(nil)
	_ repository.OutreachRepositoryInterface   = (*outreachRepo)(nil)
	_ repository.CRMLogRepositoryInterface     = (*crmRepo)(nil)
	_ repository.ContractRepositoryInterface   = (*contractRepo)(nil)
	_ repository.OutboxRepositoryInterface     = (*outboxRepo)(nil)
)
