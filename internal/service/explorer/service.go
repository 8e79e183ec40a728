package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"cartograph/internal/config"
	"cartograph/internal/domain"
	models "cartograph/internal/domain/models/explorer"
	docsysRepo "cartograph/internal/domain/repositories/docsystem"
	explorerSvc "cartograph/internal/domain/services/explorer"
)

// ViewObserver receives render stats and the open view count
type ViewObserver interface {
	PassObserver
	SetOpenViews(n int)
}

// ViewService keeps explorer views in memory, keyed by a random view ID.
// Views are never persisted; an evicted or restarted view is rebuilt from the node source.
type ViewService struct {
	nodeRepo docsysRepo.NodeRepository
	cfg      *config.ExplorerConfig
	logger   *slog.Logger
	observer ViewObserver
	ttl      time.Duration
	maxViews int
	now      func() time.Time

	mu    sync.RWMutex
	views map[string]*view
}

// ServiceOption customizes a ViewService
type ServiceOption func(*ViewService)

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ViewService) { s.now = now }
}

// WithViewObserver attaches metrics
func WithViewObserver(o ViewObserver) ServiceOption {
	return func(s *ViewService) { s.observer = o }
}

// WithTTL sets how long an untouched view survives
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *ViewService) { s.ttl = ttl }
}

// WithMaxViews caps the number of open views
func WithMaxViews(n int) ServiceOption {
	return func(s *ViewService) { s.maxViews = n }
}

// NewViewService creates a new view service
func NewViewService(
	nodeRepo docsysRepo.NodeRepository,
	cfg *config.ExplorerConfig,
	logger *slog.Logger,
	opts ...ServiceOption,
) *ViewService {
	s := &ViewService{
		nodeRepo: nodeRepo,
		cfg:      cfg,
		logger:   logger,
		ttl:      30 * time.Minute,
		maxViews: config.MaxOpenViews,
		now:      time.Now,
		views:    make(map[string]*view),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ explorerSvc.ViewService = (*ViewService)(nil)

// OpenView loads a project's nodes and mounts a new view on them
func (s *ViewService) OpenView(ctx context.Context, userID string, req *explorerSvc.OpenViewRequest) (*explorerSvc.ViewState, error) {
	if err := s.validateOpenRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.RLock()
	open := len(s.views)
	s.mu.RUnlock()
	if open >= s.maxViews {
		return nil, fmt.Errorf("%w: %d views open", domain.ErrCapacity, open)
	}

	nodes, err := s.nodeRepo.ListByProject(ctx, userID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	size := models.Size{Width: req.ViewportWidth, Height: req.ViewportHeight}
	var observer PassObserver
	if s.observer != nil {
		observer = s.observer
	}
	v := newView(id, req.ProjectID, userID, nodes, size, s.cfg, observer, s.logger)

	level := 1
	if req.ExpandLevel != nil {
		level = *req.ExpandLevel
	}
	v.tree.SetExpanded(v.engine.Hierarchy().ExpandToLevel(level))

	now := s.now()
	v.lastSeen = now
	state := v.render(now)

	s.mu.Lock()
	if len(s.views) >= s.maxViews {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d views open", domain.ErrCapacity, s.maxViews)
	}
	s.views[id] = v
	count := len(s.views)
	s.mu.Unlock()
	s.reportOpen(count)

	s.logger.Info("explorer view opened",
		"view_id", id,
		"project_id", req.ProjectID,
		"nodes", state.Stats.Nodes,
		"orphans", state.Stats.Orphans,
	)
	return state, nil
}

// GetView runs a render pass with the current state
func (s *ViewService) GetView(ctx context.Context, userID, viewID string) (*explorerSvc.ViewState, error) {
	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		return v.render(now), nil
	})
}

// Sample returns the view at the current instant without a layout pass
func (s *ViewService) Sample(ctx context.Context, userID, viewID string) (*models.RenderPass, error) {
	state, err := s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		return v.sample(now), nil
	})
	if err != nil {
		return nil, err
	}
	return &state.Pass, nil
}

// CloseView forgets a view
func (s *ViewService) CloseView(ctx context.Context, userID, viewID string) error {
	s.mu.Lock()
	v, ok := s.views[viewID]
	if ok && v.userID != userID {
		s.mu.Unlock()
		return fmt.Errorf("view %s: %w", viewID, domain.ErrForbidden)
	}
	delete(s.views, viewID)
	count := len(s.views)
	s.mu.Unlock()

	if !ok {
		return &domain.ViewNotFoundError{ViewID: viewID}
	}
	s.reportOpen(count)
	s.logger.Info("explorer view closed", "view_id", viewID)
	return nil
}

// ClickNode applies a left click: toggle folders, update selection and focus
func (s *ViewService) ClickNode(ctx context.Context, userID, viewID, nodeID string, req *explorerSvc.ClickRequest) (*explorerSvc.ViewState, error) {
	if err := validateNodeID(nodeID); err != nil {
		return nil, err
	}
	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		v.engine.Click(nodeID, req.Multi)
		return v.render(now), nil
	})
}

// CycleContext advances a node's context flag
func (s *ViewService) CycleContext(ctx context.Context, userID, viewID, nodeID string) (*explorerSvc.ViewState, error) {
	if err := validateNodeID(nodeID); err != nil {
		return nil, err
	}
	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		v.engine.ContextMenu(nodeID)
		return v.render(now), nil
	})
}

// CenterOnNode animates the viewport onto a visible node
func (s *ViewService) CenterOnNode(ctx context.Context, userID, viewID, nodeID string) (*explorerSvc.ViewState, error) {
	if err := validateNodeID(nodeID); err != nil {
		return nil, err
	}
	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		if !v.engine.CenterOnNode(nodeID, now) {
			s.logger.Debug("center request not applied", "view_id", viewID, "node_id", nodeID)
		}
		return v.sample(now), nil
	})
}

// SetExpansion applies expand_all, collapse_all or expand_to_level
func (s *ViewService) SetExpansion(ctx context.Context, userID, viewID string, req *explorerSvc.ExpansionRequest) (*explorerSvc.ViewState, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Action, validation.Required, validation.In(explorerSvc.ExpandAll, explorerSvc.CollapseAll, explorerSvc.ExpandToLevel)),
		validation.Field(&req.Level, validation.Min(0), validation.Max(config.MaxExpandLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		h := v.engine.Hierarchy()
		switch req.Action {
		case explorerSvc.ExpandAll:
			v.tree.SetExpanded(h.ExpandAll())
		case explorerSvc.CollapseAll:
			v.tree.SetExpanded(h.CollapseAll())
		case explorerSvc.ExpandToLevel:
			v.tree.SetExpanded(h.ExpandToLevel(req.Level))
		}
		return v.render(now), nil
	})
}

// Gesture feeds one pointer or wheel event into the viewport
func (s *ViewService) Gesture(ctx context.Context, userID, viewID string, req *explorerSvc.GestureRequest) (*explorerSvc.ViewState, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Type, validation.Required, validation.In(
			explorerSvc.GestureBegin, explorerSvc.GesturePan, explorerSvc.GestureZoom,
			explorerSvc.GestureWheel, explorerSvc.GestureEnd,
		)),
		validation.Field(&req.Factor, validation.When(req.Type == explorerSvc.GestureZoom, validation.Required, validation.Min(0.0))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		vp := v.engine.Viewport()
		anchor := models.Point{X: req.X, Y: req.Y}
		switch req.Type {
		case explorerSvc.GestureBegin:
			vp.BeginGesture()
		case explorerSvc.GesturePan:
			vp.Pan(req.DX, req.DY)
		case explorerSvc.GestureZoom:
			vp.Zoom(req.Factor, anchor)
		case explorerSvc.GestureWheel:
			vp.Wheel(req.DeltaY, anchor)
		case explorerSvc.GestureEnd:
			vp.EndGesture()
		}
		return v.sample(now), nil
	})
}

// MinimapClick recenters the main view on an overview position
func (s *ViewService) MinimapClick(ctx context.Context, userID, viewID string, req *explorerSvc.PointRequest) (*explorerSvc.ViewState, error) {
	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		if !v.engine.MinimapClick(models.Point{X: req.X, Y: req.Y}, now) {
			s.logger.Debug("minimap click ignored", "view_id", viewID)
		}
		return v.sample(now), nil
	})
}

// Resize records new viewport dimensions and re-renders (the overview may appear or vanish)
func (s *ViewService) Resize(ctx context.Context, userID, viewID string, req *explorerSvc.ResizeRequest) (*explorerSvc.ViewState, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Width, validation.Required, validation.Min(0.0), validation.Max(float64(config.MaxViewportDimension))),
		validation.Field(&req.Height, validation.Required, validation.Min(0.0), validation.Max(float64(config.MaxViewportDimension))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.withView(userID, viewID, func(v *view, now time.Time) (*explorerSvc.ViewState, error) {
		v.engine.Viewport().Resize(models.Size{Width: req.Width, Height: req.Height})
		return v.render(now), nil
	})
}

// Reload re-reads the node list from the source
func (s *ViewService) Reload(ctx context.Context, userID, viewID string) (*explorerSvc.ViewState, error) {
	v, err := s.lookup(userID, viewID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.nodeRepo.ListByProject(ctx, v.userID, v.projectID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	now := s.now()
	v.lastSeen = now
	v.replaceNodes(nodes)
	return v.render(now), nil
}

// ReloadProject refreshes every open view of projectID. Views are reloaded with their
// owner's identity; the first error is returned after all views were attempted.
func (s *ViewService) ReloadProject(ctx context.Context, projectID string) error {
	s.mu.RLock()
	var targets []*view
	for _, v := range s.views {
		if v.projectID == projectID {
			targets = append(targets, v)
		}
	}
	s.mu.RUnlock()

	var firstErr error
	for _, v := range targets {
		if _, err := s.Reload(ctx, v.userID, v.id); err != nil {
			s.logger.Warn("view reload failed", "view_id", v.id, "project_id", projectID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if len(targets) > 0 {
		s.logger.Info("project views reloaded", "project_id", projectID, "views", len(targets))
	}
	return firstErr
}

// EvictIdle drops views untouched for longer than the TTL and returns how many went
func (s *ViewService) EvictIdle() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	evicted := 0
	for id, v := range s.views {
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			delete(s.views, id)
			evicted++
		}
	}
	count := len(s.views)
	s.mu.Unlock()

	if evicted > 0 {
		s.reportOpen(count)
		s.logger.Info("idle explorer views evicted", "evicted", evicted, "open", count)
	}
	return evicted
}

// Run evicts idle views periodically until ctx is cancelled
func (s *ViewService) Run(ctx context.Context) {
	interval := max(s.ttl/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.EvictIdle()
		case <-ctx.Done():
			return
		}
	}
}

// OpenViews is the number of views currently held
func (s *ViewService) OpenViews() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

func (s *ViewService) lookup(userID, viewID string) (*view, error) {
	s.mu.RLock()
	v, ok := s.views[viewID]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.ViewNotFoundError{ViewID: viewID}
	}
	if v.userID != userID {
		return nil, fmt.Errorf("view %s: %w", viewID, domain.ErrForbidden)
	}
	return v, nil
}

// withView runs fn with the view locked and its idle timer refreshed
func (s *ViewService) withView(userID, viewID string, fn func(v *view, now time.Time) (*explorerSvc.ViewState, error)) (*explorerSvc.ViewState, error) {
	v, err := s.lookup(userID, viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	now := s.now()
	v.lastSeen = now
	return fn(v, now)
}

func (s *ViewService) reportOpen(n int) {
	if s.observer != nil {
		s.observer.SetOpenViews(n)
	}
}

// validateOpenRequest validates a view creation request
func (s *ViewService) validateOpenRequest(req *explorerSvc.OpenViewRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.ViewportWidth, validation.Required, validation.Min(0.0), validation.Max(float64(config.MaxViewportDimension))),
		validation.Field(&req.ViewportHeight, validation.Required, validation.Min(0.0), validation.Max(float64(config.MaxViewportDimension))),
		validation.Field(&req.ExpandLevel, validation.Min(0), validation.Max(config.MaxExpandLevel)),
	)
}

func validateNodeID(nodeID string) error {
	if err := validation.Validate(nodeID, validation.Required, validation.Length(1, config.MaxNodeIDLength)); err != nil {
		return fmt.Errorf("%w: node id %v", domain.ErrValidation, err)
	}
	return nil
}
