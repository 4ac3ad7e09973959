package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"lanchat/transport/ws"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/history", h.History)
	r.Get("/ws", wsServer.HandleWS)

	r.Post("/upload", h.Upload)
	r.Get("/files/{filename}", h.ServeFile)

	r.Get("/healthz", h.Healthz)
	r.Get("/stats", h.Stats)

	return r
}
