package tools

import (
	"context"
	"time"
)

// Service is the tool-dispatch and session-mediation core. It wires the
// registry, the safety checks, the document tracker, and the call serializer
// around one host session, and is the single entry point the transport layer
// calls.
//
// Contract:
// - Concurrency: Dispatch is safe for concurrent use; session access is
//   serialized internally in FIFO order.
// - Context: Dispatch honors cancellation for the wait; host work already
//   started is not cancelled (see ErrTimeout).
// - Errors: validation failures surface before any session interaction;
//   host evaluation errors pass through with their diagnostic text intact.
type Service struct {
	cfg  Config
	lane *Lane
	docs *Tracker
	reg  *Registry
}

// New creates a Service for one host session and registers the full tool
// surface.
func New(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:  cfg,
		lane: NewLane(),
		docs: NewTracker(),
		reg:  NewRegistry(),
	}
	if err := s.registerAll(); err != nil {
		s.lane.Close()
		return nil, err
	}
	return s, nil
}

// Tools returns the registered tool surface in registration order, for the
// transport layer to advertise.
func (s *Service) Tools() []Tool {
	return s.reg.Tools()
}

// Dispatch validates and executes one tool call. One failed call never
// corrupts serializer state or affects subsequent calls.
func (s *Service) Dispatch(ctx context.Context, call Call) (Result, error) {
	start := time.Now()
	res, err := s.reg.Dispatch(ctx, call)
	if err != nil {
		s.cfg.logf("tool %s failed after %s: %v", call.Name, time.Since(start).Round(time.Millisecond), err)
		return Result{}, err
	}
	s.cfg.logf("tool %s returned %s result in %s", call.Name, res.Kind, time.Since(start).Round(time.Millisecond))
	return res, nil
}

// Ping verifies session liveness through the serializer, so a probe can
// never interleave with a running call.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.run(ctx, func(ctx context.Context) (Result, error) {
		return Result{}, s.cfg.Session.Ping(ctx)
	})
	return err
}

// Close shuts down the serializer. In-flight work finishes first.
func (s *Service) Close() {
	s.lane.Close()
}

// run submits session-touching work to the lane, applying the configured
// call timeout. Pure validation must happen before run is called; fn is the
// only place adapter interactions are allowed.
func (s *Service) run(ctx context.Context, fn func(ctx context.Context) (Result, error)) (Result, error) {
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}
	return s.lane.Do(ctx, fn)
}

func (s *Service) registerAll() error {
	for _, t := range []Tool{
		s.evalTool(),
		s.listEnvironmentsTool(),
		s.listObjectsTool(),
		s.getObjectTool(),
		s.consoleHistoryTool(),
		s.listOpenDocumentsTool(),
		s.activeDocumentTool(),
		s.createDocumentTool(),
		s.openDocumentFileTool(),
		s.insertTextTool(),
		s.replaceTextTool(),
		s.sourceDocumentTool(),
		s.currentPlotTool(),
		s.viewerContentTool(),
	} {
		if err := s.reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
