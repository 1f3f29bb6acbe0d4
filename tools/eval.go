package tools

import (
	"context"
	"fmt"
	"strings"
)

func (s *Service) evalTool() Tool {
	return Tool{
		Name: "eval_r",
		Description: "Evaluate R code in the live session console and return the printed output. " +
			"By default, code that would overwrite an existing top-level variable is refused; " +
			"pass allow_reassign=true to permit it.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "R source text to evaluate",
				},
				"allow_reassign": map[string]any{
					"type":        "boolean",
					"description": "Permit overwriting existing variables (default false)",
				},
			},
			"required": []any{"code"},
		},
		Handler: s.handleEval,
	}
}

func (s *Service) handleEval(ctx context.Context, args map[string]any) (Result, error) {
	code, err := stringArg(args, "code")
	if err != nil {
		return Result{}, err
	}
	allowReassign, err := optionalBoolArg(args, "allow_reassign", false)
	if err != nil {
		return Result{}, err
	}

	// The existence probe has to happen inside the lane: checking
	// outside it would race with whatever call is currently mutating
	// the environment. It still runs strictly before the evaluation,
	// so a denied call leaves no partial state.
	return s.run(ctx, func(ctx context.Context) (Result, error) {
		if !allowReassign {
			names := assignedNames(code)
			if len(names) > 0 {
				existing, err := s.existingNames(ctx)
				if err != nil {
					return Result{}, err
				}
				if err := checkReassignment(code, existing); err != nil {
					return Result{}, err
				}
			}
		}

		out, err := s.cfg.Session.Evaluate(ctx, code)
		if err != nil {
			return Result{}, err
		}
		return TextResult(out), nil
	})
}

// existingNames probes the global environment for currently bound names.
func (s *Service) existingNames(ctx context.Context) (map[string]bool, error) {
	objs, err := s.cfg.Session.ListObjects(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(objs))
	for _, o := range objs {
		existing[o.Name] = true
	}
	return existing, nil
}

func (s *Service) listEnvironmentsTool() Tool {
	return Tool{
		Name:        "list_environments",
		Description: "List the environments on the session search path, in search order.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, _ map[string]any) (Result, error) {
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				envs, err := s.cfg.Session.SearchPath(ctx)
				if err != nil {
					return Result{}, err
				}
				// Search-path order is part of the client contract.
				return ListResult(envs), nil
			})
		},
	}
}

func (s *Service) listObjectsTool() Tool {
	return Tool{
		Name:        "list_objects",
		Description: "List the objects in the global environment with a short structural summary each.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, _ map[string]any) (Result, error) {
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				objs, err := s.cfg.Session.ListObjects(ctx)
				if err != nil {
					return Result{}, err
				}
				items := make([]string, 0, len(objs))
				for _, o := range objs {
					// Server bookkeeping objects stay invisible.
					if strings.HasPrefix(o.Name, ReservedPrefix) {
						continue
					}
					if o.Summary == "" {
						items = append(items, o.Name)
						continue
					}
					items = append(items, fmt.Sprintf("%s: %s", o.Name, o.Summary))
				}
				return ListResult(items), nil
			})
		},
	}
}

func (s *Service) getObjectTool() Tool {
	return Tool{
		Name:        "get_object",
		Description: "Return the host's structural summary of one object, str()-style, verbatim.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Name of the object to describe",
				},
			},
			"required": []any{"name"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return Result{}, err
			}
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				summary, err := s.cfg.Session.DescribeObject(ctx, name)
				if err != nil {
					return Result{}, err
				}
				return TextResult(summary), nil
			})
		},
	}
}

func (s *Service) consoleHistoryTool() Tool {
	return Tool{
		Name:        "get_console_history",
		Description: "Return recent console input lines, oldest first.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"max_lines": map[string]any{
					"type":        "integer",
					"description": "Maximum number of lines to return (default: all)",
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			maxLines, present, err := optionalIntArg(args, "max_lines")
			if err != nil {
				return Result{}, err
			}
			if present && maxLines < 1 {
				return Result{}, fmt.Errorf("%w: max_lines must be positive", ErrInvalidArgument)
			}
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				lines, err := s.cfg.Session.ConsoleHistory(ctx, maxLines)
				if err != nil {
					return Result{}, err
				}
				return TextResult(strings.Join(lines, "\n")), nil
			})
		},
	}
}
