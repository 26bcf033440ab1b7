package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aradsms/bdappsapi/pkg/bdapps/apierr"
	"github.com/aradsms/bdappsapi/pkg/bdapps/inbound"
)

// DefaultMaxBodyBytes bounds callback bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// CallbackProcessor validates and forwards one callback body.
type CallbackProcessor interface {
	Process(ctx context.Context, kind inbound.Kind, body []byte) (any, error)
}

// StatusResponse is the acknowledgement body BDApps expects.
type StatusResponse struct {
	StatusCode   string `json:"statusCode"`
	StatusDetail string `json:"statusDetail"`
}

var successResponse = StatusResponse{StatusCode: "S1000", StatusDetail: "Success"}

type CallbackHandler struct {
	processor    CallbackProcessor
	logger       *slog.Logger
	maxBodyBytes int64
}

func NewCallbackHandler(processor CallbackProcessor, logger *slog.Logger, maxBodyBytes int64) *CallbackHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &CallbackHandler{
		processor:    processor,
		logger:       logger.With("handler", "bdapps_callback"),
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes mounts the webhook endpoints under /bdapps.
func (h *CallbackHandler) RegisterRoutes(r chi.Router) {
	r.Route("/bdapps", func(r chi.Router) {
		r.Post("/sms/report", h.HandleDeliveryReport)
		r.Post("/sms/receive", h.HandleIncomingSMS)
		r.Post("/ussd/receive", h.HandleIncomingUSSD)
		r.Post("/subscription/notify", h.HandleSubscriptionNotification)
	})
}

func (h *CallbackHandler) HandleDeliveryReport(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, inbound.DeliveryReport)
}

func (h *CallbackHandler) HandleIncomingSMS(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, inbound.IncomingSMS)
}

func (h *CallbackHandler) HandleIncomingUSSD(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, inbound.IncomingUSSD)
}

func (h *CallbackHandler) HandleSubscriptionNotification(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, inbound.SubscriptionNotification)
}

func (h *CallbackHandler) handle(w http.ResponseWriter, r *http.Request, kind inbound.Kind) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "kind", kind.String())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.WarnContext(ctx, "Callback body too large", "limit", h.maxBodyBytes)
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		logger.ErrorContext(ctx, "Failed to read callback body", "error", err)
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	if _, err := h.processor.Process(ctx, kind, body); err != nil {
		if errors.Is(err, apierr.ErrMalformedPayload) || errors.Is(err, apierr.ErrMissingField) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorContext(ctx, "Failed to process callback", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to queue callback for processing")
		return
	}

	respondJSON(w, http.StatusOK, successResponse)
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}
