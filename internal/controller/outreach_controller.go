package controller

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/handler"
	"github.com/ampplex/influencerflow/internal/service"
)

type decisionFunc func(ctx context.Context, brandID, outreachID uuid.UUID) (*model.Outreach, error)

type OutreachController struct {
	OutreachService *service.OutreachService
}

func (c *OutreachController) Accept(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.OutreachService.Accept)
}

func (c *OutreachController) Deny(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.OutreachService.Deny)
}

func (c *OutreachController) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	o, err := fn(r.Context(), brandID(r), id)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, o)
}

func (c *OutreachController) CRMLog(w http.ResponseWriter, r *http.Request) {
	campaignID, err := handler.UUIDQuery(r, "campaign_id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	influencerID, err := handler.UUIDQuery(r, "influencer_id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	l, err := c.OutreachService.CRMLog(r.Context(), session(r), campaignID, influencerID)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, l)
}
