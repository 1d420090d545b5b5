package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ampplex/influencerflow/internal/auth"
	"github.com/ampplex/influencerflow/internal/handler"
	"github.com/ampplex/influencerflow/internal/logging"
)

// Routes bundles everything the router mounts.
type Routes struct {
	Issuer      *auth.Issuer
	Log         logrus.FieldLogger
	Campaigns   *CampaignController
	Outreach    *OutreachController
	Negotiation *NegotiationController
	Contracts   *ContractController
	Payments    *handler.PaymentHandler
	Monitor     *handler.MonitorHandler
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(rt.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)

	// Public: Razorpay callback and media lookups.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Post("/payments/verify", rt.Payments.Verify)
		r.Post("/instagram/monitor", rt.Monitor.InstagramMonitor)
		r.Post("/youtube/monitor", rt.Monitor.YouTubeMonitor)
		r.Get("/instagram-posts", rt.Monitor.InstagramPosts)
		r.Post("/monitor/instagram/by-username-and-id", rt.Monitor.InstagramByUsernameAndID)
		r.Post("/monitor/batch", rt.Monitor.Batch)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(rt.Issuer))

		// Campaign routes
		r.Get("/campaigns", rt.Campaigns.ListCampaigns)
		r.Get("/campaigns/{id}", rt.Campaigns.GetCampaignDetails)
		r.Get("/campaigns/{id}/outreach", rt.Campaigns.ListOutreach)
		r.Get("/crm-logs", rt.Outreach.CRMLog)

		r.Post("/negotiations/start", rt.Negotiation.Start)
		r.Post("/negotiations/{sessionID}/respond", rt.Negotiation.Respond)
		r.Get("/negotiations/sessions", rt.Negotiation.Sessions)

		r.Post("/contracts/preview", rt.Contracts.Preview)
		r.Get("/contracts/{id}", rt.Contracts.Get)
		r.Post("/contracts/{id}/sign", rt.Contracts.Sign)
		r.Post("/contracts/{id}/reject", rt.Contracts.Reject)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBrand)
			r.Post("/campaigns", rt.Campaigns.CreateCampaign)
			r.Patch("/campaigns/{id}/status", rt.Campaigns.UpdateStatus)
			r.Post("/campaigns/{id}/outreach", rt.Campaigns.InitiateOutreach)
			r.Post("/outreach/{id}/accept", rt.Outreach.Accept)
			r.Post("/outreach/{id}/deny", rt.Outreach.Deny)
			r.Post("/contracts", rt.Contracts.Generate)
			r.Post("/contracts/{id}/send", rt.Contracts.Send)
		})
	})

	return r
}
