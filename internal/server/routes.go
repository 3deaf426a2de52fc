package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/poietai/poietai/internal/api/v1"
	"github.com/poietai/poietai/internal/api/ws"
	"github.com/poietai/poietai/internal/fleet"
	"github.com/poietai/poietai/internal/github"
	"github.com/poietai/poietai/internal/gitutil"
	"github.com/poietai/poietai/internal/secrets"
	"github.com/poietai/poietai/internal/store/postgres"
)

func registerAPIRoutes(api huma.API, store *postgres.Store, orch *fleet.Orchestrator, vault *secrets.Vault) {
	v1.RegisterAgentRoutes(api, store, orch)
	v1.RegisterTicketRoutes(api, store)
	v1.RegisterProjectRoutes(api, store)
	v1.RegisterCanvasRoutes(api, orch)
	v1.RegisterMessageRoutes(api, store)
	v1.RegisterOnboardingRoutes(api, store, vault, github.VerifyToken, gitutil.ScanFolder)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/canvas/{agentID}/{ticketID}", hub.ServeCanvas)
	r.Get("/agents", hub.ServeAgents)
	r.Get("/inbox/{agentID}", hub.ServeInbox)
}
