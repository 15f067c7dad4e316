package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"adtime-printshop/internal/pricing"
	"adtime-printshop/internal/storage"
	"adtime-printshop/pkg/validate"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pricer is the pricing entry point consumed by the order-entry screens.
type Pricer interface {
	CalculatePrice(ctx context.Context, req pricing.Request) pricing.Result
}

type QuoteStore interface {
	SaveQuote(ctx context.Context, q storage.Quote) error
	GetQuote(ctx context.Context, id uuid.UUID) (*storage.Quote, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, subject, action string) (bool, error)
}

type Handler struct {
	pricer  Pricer
	quotes  QuoteStore
	limiter RateLimiter
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(pricer Pricer, quotes QuoteStore, limiter RateLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		pricer:  pricer,
		quotes:  quotes,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Post("/price", h.handlePrice)
		r.Post("/quotes", h.handleCreateQuote)
		r.Get("/quotes/{id}", h.handleGetQuote)
	})
	return r
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type quoteResponse struct {
	Quote  *storage.Quote `json:"quote,omitempty"`
	Result pricing.Result `json:"result"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (pricing.Request, bool) {
	var req pricing.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "invalid request: " + validate.Describe(err),
			Fields: validate.Fields(err),
		})
		return req, false
	}
	return req, true
}

func (h *Handler) handlePrice(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.pricer.CalculatePrice(r.Context(), req))
}

func (h *Handler) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	const operation = "http.handleCreateQuote"

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	res := h.pricer.CalculatePrice(r.Context(), req)
	if !res.Priced() {
		writeJSON(w, http.StatusUnprocessableEntity, quoteResponse{Result: res})
		return
	}

	quote := storage.NewQuote(req, res, "http:"+clientIP(r), h.now())
	if err := h.quotes.SaveQuote(r.Context(), quote); err != nil {
		h.logger.Error("Failed to save quote",
			zap.String("operation", operation),
			zap.Int64("product_id", req.ProductID),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save quote"})
		return
	}

	writeJSON(w, http.StatusCreated, quoteResponse{Quote: &quote, Result: res})
}

func (h *Handler) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid quote id"})
		return
	}

	quote, err := h.quotes.GetQuote(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrQuoteNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quote not found"})
		return
	case err != nil:
		h.logger.Error("Failed to get quote", zap.String("quote_id", id.String()), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get quote"})
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		allowed, err := h.limiter.Allow(r.Context(), clientIP(r), "api")
		if err != nil {
			// Redis trouble must not block pricing.
			h.logger.Warn("Rate limit check failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the TCP peer address. Forwarding headers are client controlled
// and must not decide the rate limit key.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
