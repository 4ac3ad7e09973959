// Package http exposes the request/response surface: login, logout, history
// replay, uploads, and the stats endpoint.
package http

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"lanchat/auth"
	"lanchat/domain"
	"lanchat/domain/event"
	"lanchat/errors"
	"lanchat/observability"
	"lanchat/runtime"
	"lanchat/services"
	"lanchat/storage"
)

// SessionCookie carries the signed session token across requests.
const SessionCookie = "lanchat_session"

const maxUploadBytes = 32 << 20

type Handler struct {
	log      *slog.Logger
	gate     services.IGateService
	chat     services.IChatService
	sessions *auth.SessionStore
	signer   *auth.TokenSigner
	bus      *runtime.Bus
	presence *runtime.Registry
	uploads  *storage.UploadStore
	monitor  *observability.Monitor
}

func NewHandler(log *slog.Logger, gate services.IGateService, chat services.IChatService,
	sessions *auth.SessionStore, signer *auth.TokenSigner, bus *runtime.Bus,
	presence *runtime.Registry, uploads *storage.UploadStore,
	monitor *observability.Monitor) *Handler {
	return &Handler{
		log:      log,
		gate:     gate,
		chat:     chat,
		sessions: sessions,
		signer:   signer,
		bus:      bus,
		presence: presence,
		uploads:  uploads,
		monitor:  monitor,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// FromRequest resolves the caller's session from the signed cookie. Every
// privileged handler calls it explicitly at its entry; there is no ambient
// auth middleware.
func (h *Handler) FromRequest(r *http.Request) (auth.Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return auth.Session{}, errors.ErrUnauthenticated
	}
	sessionID, err := h.signer.Parse(cookie.Value)
	if err != nil {
		return auth.Session{}, errors.ErrUnauthenticated
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return auth.Session{}, errors.ErrUnauthenticated
	}
	return h.sessions.Resolve(id)
}

// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	identity, err := h.gate.Authenticate(req.Username, req.Password)
	if err != nil {
		status, reason := loginFailure(err)
		h.log.Info("Login rejected", "username", req.Username, "reason", reason)
		writeJSON(w, status, ErrorResponse{Error: reason})
		return
	}

	sess := h.sessions.Create(identity)
	token, err := h.signer.Sign(sess.ID.String())
	if err != nil {
		h.log.Error("Session token signing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info("User logged in", "username", identity)
	h.bus.Publish(event.UserJoined{Username: identity})
	writeJSON(w, http.StatusOK, LoginResponse{
		Username:    identity,
		OnlineUsers: h.presence.Snapshot(),
	})
}

func loginFailure(err error) (int, string) {
	switch {
	case stderrors.Is(err, errors.ErrUsernameMissing):
		return http.StatusBadRequest, "username_missing"
	case stderrors.Is(err, errors.ErrSecretRequired):
		return http.StatusBadRequest, "secret_required"
	case stderrors.Is(err, errors.ErrIncorrectSecret):
		return http.StatusUnauthorized, "incorrect_secret"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.FromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}
	h.sessions.Destroy(sess.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.log.Info("User logged out", "username", sess.Username)
	h.bus.Publish(event.UserLeft{Username: sess.Username})
	w.WriteHeader(http.StatusNoContent)
}

// GET /history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if _, err := h.FromRequest(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}
	messages, err := h.chat.History()
	if err != nil {
		h.log.Error("History read failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal"})
		return
	}
	items := lo.Map(messages, func(msg domain.Message, _ int) MessageItem {
		return MessageItem{
			ID:        msg.Seq,
			Username:  msg.Author,
			Message:   msg.Body,
			Timestamp: msg.At.Format(time.RFC3339),
		}
	})
	writeJSON(w, http.StatusOK, items)
}

// POST /upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, err := h.FromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "no file part in the request"})
		return
	}
	defer file.Close()

	name, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		h.log.Warn("Upload rejected", "filename", header.Filename, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	h.chat.ShareFile(sess.Username, name)
	writeJSON(w, http.StatusCreated, UploadResponse{Filename: name})
}

// GET /files/{filename}
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.FromRequest(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}
	name := chi.URLParam(r, "filename")
	path, err := h.uploads.Path(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "file not found"})
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	http.ServeFile(w, r, path)
}

// GET /stats
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	stats := struct {
		observability.Stats
		OnlineConnections int `json:"online_connections"`
	}{
		Stats:             h.monitor.Snapshot(),
		OnlineConnections: h.presence.Size(),
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
