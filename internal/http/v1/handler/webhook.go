package handler

import (
	"context"
	gh "github.com/google/go-github/v66/github"
	"log/slog"
	"mime"
	"net/http"
	"pollbot/internal/apperrors"
	"pollbot/internal/github"
	"pollbot/internal/lib/logger/sl"
	"pollbot/internal/service"
)

const maxWebhookBody = 5 << 20

type WebhookResponse struct {
	Status string `json:"status"`
}

type EventService interface {
	HandleIssueEvent(ctx context.Context, ev service.IssueEvent) error
	HandleCommentEvent(ctx context.Context, ev service.CommentEvent) error
}

type WebhookHandler struct {
	eventService EventService
	secret       []byte
	log          *slog.Logger
}

func NewWebhookHandler(eventService EventService, secret string, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		eventService: eventService,
		secret:       []byte(secret),
		log:          log,
	}
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const op = "handler.webhook.HandleWebhook"

	eventType := gh.WebHookType(r)
	log := h.log.With(
		slog.String("op", op),
		slog.String("event", eventType),
		slog.String("delivery", gh.DeliveryID(r)),
	)

	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || (contentType != "application/json" && contentType != "application/x-www-form-urlencoded") {
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", "unsupported content type")
		return
	}

	signature := r.Header.Get(gh.SHA256SignatureHeader)
	if signature == "" {
		signature = r.Header.Get(gh.SHA1SignatureHeader)
	}

	payload, err := gh.ValidatePayloadFromBody(contentType, http.MaxBytesReader(w, r.Body, maxWebhookBody), signature, h.secret)
	if err != nil {
		log.Warn("rejecting webhook", sl.Err(err))
		writeErrorResponse(w, log, http.StatusUnauthorized, "INVALID_SIGNATURE", apperrors.ErrInvalidSignature.Error())
		return
	}

	switch eventType {
	case "ping":
		writeJSON(w, log, http.StatusOK, WebhookResponse{Status: "pong"})
		return
	case "issue_comment", "issues":
	default:
		log.Debug("ignoring unsupported event")
		writeJSON(w, log, http.StatusOK, WebhookResponse{Status: "ignored"})
		return
	}

	event, err := github.ParseEvent(eventType, payload)
	if err != nil {
		log.Error("failed to parse webhook payload", sl.Err(err))
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_PAYLOAD", "failed to parse webhook payload")
		return
	}

	switch ev := event.(type) {
	case service.CommentEvent:
		err = h.eventService.HandleCommentEvent(r.Context(), ev)
	case service.IssueEvent:
		err = h.eventService.HandleIssueEvent(r.Context(), ev)
	}

	switch {
	case err == nil:
		writeJSON(w, log, http.StatusOK, WebhookResponse{Status: "accepted"})
	case service.IsCommandRejection(err):
		log.Info("bot command rejected", sl.Err(err))
		writeJSON(w, log, http.StatusOK, WebhookResponse{Status: "ignored"})
	default:
		log.Error("failed to handle webhook", sl.Err(err))
		writeErrorResponse(w, log, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to handle webhook")
	}
}
