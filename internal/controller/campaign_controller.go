// internal/controller/campaign_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/ampplex/influencerflow/internal/handler"
	"github.com/ampplex/influencerflow/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	OutreachService *service.OutreachService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CreateCampaignInput
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), brandID(r), body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	campaignType := r.URL.Query().Get("campaign_type")
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), page, pageSize, campaignType, status)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]any{
		"data":       campaigns,
		"pagination": pagination, // already contains total_count, total_pages, page, page_size
	})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	details, err := c.CampaignService.GetCampaignDetailsWithStats(r.Context(), id)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, details)
}

func (c *CampaignController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	if err := c.CampaignService.UpdateStatus(r.Context(), brandID(r), id, body.Status); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": body.Status})
}

func (c *CampaignController) InitiateOutreach(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}
	var body service.InitiateOutreachInput
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.WriteError(w, r, err)
		return
	}

	result, err := c.OutreachService.InitiateOutreach(r.Context(), brandID(r), id, body)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, result)
}

func (c *CampaignController) ListOutreach(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	list, err := c.OutreachService.ListOutreach(r.Context(), id)
	if err != nil {
		handler.WriteError(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]any{"data": list})
}
