package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"cartograph/internal/domain"
	explorerSvc "cartograph/internal/domain/services/explorer"
	"cartograph/internal/handler/sse"
	"cartograph/internal/httputil"
)

// StreamHandler pushes sampled render passes of a view over Server-Sent Events
type StreamHandler struct {
	viewService explorerSvc.ViewService
	config      *sse.Config
	logger      *slog.Logger
}

// NewStreamHandler creates a new stream handler; a nil config uses sse.DefaultConfig
func NewStreamHandler(viewService explorerSvc.ViewService, config *sse.Config, logger *slog.Logger) *StreamHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &StreamHandler{
		viewService: viewService,
		config:      config,
		logger:      logger,
	}
}

// Stream samples the view on a ticker and sends a "frame" event whenever the sampled
// pass differs from the last one sent. The stream ends with a "closed" event when the
// view goes away.
// GET /api/views/{id}/stream
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}
	caller, _ := httputil.CallerFrom(r.Context())
	userID := caller.UserID
	ctx := r.Context()

	// Fail before switching to event-stream so the client gets a normal error response
	pass, err := h.viewService.Sample(ctx, userID, viewID)
	if err != nil {
		handleError(w, err)
		return
	}

	writer, ok := sse.NewWriter(w)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	logger := h.logger.With("view_id", viewID, "user_id", userID, "dev_user", caller.Dev)
	logger.Debug("render stream opened")

	keepAlive := sse.NewTickerKeepAlive(h.config.KeepAliveInterval)
	keepAliveDone := keepAlive.Start(writer, logger)
	defer func() {
		keepAlive.Stop()
		<-keepAliveDone
	}()

	var (
		lastHash uint64
		seq      int
	)
	send := func(payload []byte) error {
		sum := xxhash.Sum64(payload)
		if seq > 0 && sum == lastHash {
			return nil
		}
		seq++
		lastHash = sum
		return writer.WriteEvent("frame", strconv.Itoa(seq), payload)
	}

	interval := h.config.IdleInterval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("render stream closed by client", "frames", seq)
			return
		case <-keepAliveDone:
			logger.Debug("render stream connection lost", "frames", seq)
			return
		case <-timer.C:
		}

		if pass == nil {
			pass, err = h.viewService.Sample(ctx, userID, viewID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
					_ = writer.WriteEvent("closed", "", []byte(`{"reason":"view closed"}`))
					logger.Debug("render stream ended, view gone", "frames", seq)
				} else {
					logger.Warn("render stream sample failed", "error", err)
				}
				return
			}
		}

		payload, err := json.Marshal(pass)
		if err != nil {
			logger.Error("render pass encoding failed", "error", err)
			return
		}
		if err := send(payload); err != nil {
			logger.Debug("render stream write failed", "error", err)
			return
		}

		interval = h.config.IdleInterval
		if pass.Animating {
			interval = h.config.FrameInterval
		}
		pass = nil
		timer.Reset(interval)
	}
}
