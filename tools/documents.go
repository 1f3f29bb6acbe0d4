package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/statkit/rsessiond/session"
)

func (s *Service) listOpenDocumentsTool() Tool {
	return Tool{
		Name:        "list_open_documents",
		Description: "List the open documents with their IDs and paths, in the order this server learned of them.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, _ map[string]any) (Result, error) {
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				docs, err := s.docs.OrderedOpen(ctx, s.cfg.Session)
				if err != nil {
					return Result{}, err
				}
				items := make([]string, 0, len(docs))
				for _, d := range docs {
					items = append(items, Describe(d))
				}
				return ListResult(items), nil
			})
		},
	}
}

func (s *Service) activeDocumentTool() Tool {
	return Tool{
		Name:        "get_active_document",
		Description: "Return the active document's ID, path, and full contents.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(ctx context.Context, _ map[string]any) (Result, error) {
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				doc, err := s.docs.ResolveActive(ctx, s.cfg.Session)
				if err != nil {
					return Result{}, err
				}
				contents, err := s.cfg.Session.DocumentContents(ctx, doc.ID)
				if err != nil {
					return Result{}, err
				}
				path := doc.Path
				if doc.Untitled() {
					path = "untitled"
				}
				// The "ID:" label is grep-able; clients parse the
				// identifier out of the text. Buffer contents are
				// returned byte-for-byte: the trailing-newline trim
				// applies to printed console output, never to a
				// document body.
				header := fmt.Sprintf("ID: %s\nPath: %s\n\n", doc.ID, path)
				return Result{Kind: KindText, Text: header + contents}, nil
			})
		},
	}
}

func (s *Service) createDocumentTool() Tool {
	return Tool{
		Name: "create_document",
		Description: "Create a new document containing the given text and make it active. " +
			"Either a blank in-memory buffer (blank=true, the default when no path is given) " +
			"or a file at the given path — never both.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Initial document contents",
				},
				"blank": map[string]any{
					"type":        "boolean",
					"description": "Create an untitled in-memory buffer (mutually exclusive with path)",
				},
				"path": map[string]any{
					"type":        "string",
					"description": "Create the document as a file at this path (mutually exclusive with blank)",
				},
			},
			"required": []any{"text"},
		},
		Handler: s.handleCreateDocument,
	}
}

func (s *Service) handleCreateDocument(ctx context.Context, args map[string]any) (Result, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return Result{}, err
	}
	blank, err := optionalBoolArg(args, "blank", false)
	if err != nil {
		return Result{}, err
	}
	path, _, err := optionalStringArg(args, "path")
	if err != nil {
		return Result{}, err
	}

	// Exclusivity is a pure argument property; it fails before any
	// document comes into existence.
	if err := checkCreateArguments(blank, path); err != nil {
		return Result{}, err
	}

	return s.run(ctx, func(ctx context.Context) (Result, error) {
		var (
			doc     session.Document
			openErr error
		)
		if path != "" {
			doc, openErr = s.cfg.Session.CreateFile(ctx, path, text)
		} else {
			doc, openErr = s.cfg.Session.CreateUntitled(ctx, text)
		}
		if openErr != nil {
			return Result{}, openErr
		}
		s.docs.Remember(doc.ID)
		return TextResult(fmt.Sprintf("Created new document with ID: %s", doc.ID)), nil
	})
}

func (s *Service) openDocumentFileTool() Tool {
	return Tool{
		Name:        "open_document_file",
		Description: "Open an existing file in the editor and make it active.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{
					"type":        "string",
					"description": "Path of the file to open on the host filesystem",
				},
			},
			"required": []any{"file_path"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			filePath, err := stringArg(args, "file_path")
			if err != nil {
				return Result{}, err
			}
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				doc, err := s.cfg.Session.OpenFile(ctx, filePath)
				if err != nil {
					return Result{}, err
				}
				s.docs.Remember(doc.ID)
				return TextResult(fmt.Sprintf("Opened %s with ID: %s", filePath, doc.ID)), nil
			})
		},
	}
}

func (s *Service) insertTextTool() Tool {
	return Tool{
		Name: "insert_text",
		Description: "Insert text into the active document, at the given line/column or at the " +
			"current cursor position.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text to insert",
				},
				"line": map[string]any{
					"type":        "integer",
					"description": "1-based target line (default: cursor position)",
				},
				"column": map[string]any{
					"type":        "integer",
					"description": "1-based target column (default: 1 when line is given)",
				},
			},
			"required": []any{"text"},
		},
		Handler: s.handleInsertText,
	}
}

func (s *Service) handleInsertText(ctx context.Context, args map[string]any) (Result, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return Result{}, err
	}
	line, hasLine, err := optionalIntArg(args, "line")
	if err != nil {
		return Result{}, err
	}
	column, hasColumn, err := optionalIntArg(args, "column")
	if err != nil {
		return Result{}, err
	}
	if hasColumn && !hasLine {
		return Result{}, fmt.Errorf("%w: column requires line", ErrInvalidArgument)
	}

	var loc *session.Location
	if hasLine {
		if line < 1 {
			return Result{}, fmt.Errorf("%w: line must be positive", ErrInvalidArgument)
		}
		if !hasColumn {
			column = 1
		}
		if column < 1 {
			return Result{}, fmt.Errorf("%w: column must be positive", ErrInvalidArgument)
		}
		loc = &session.Location{Line: line, Column: column}
	}

	return s.run(ctx, func(ctx context.Context) (Result, error) {
		doc, err := s.docs.ResolveActive(ctx, s.cfg.Session)
		if err != nil {
			return Result{}, err
		}
		if err := s.cfg.Session.InsertText(ctx, doc.ID, text, loc); err != nil {
			return Result{}, err
		}
		return TextResult(fmt.Sprintf("Inserted text into document %s", doc.ID)), nil
	})
}

func (s *Service) replaceTextTool() Tool {
	return Tool{
		Name:        "replace_text_range",
		Description: "Replace every occurrence of a string in the active document.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"old_string": map[string]any{
					"type":        "string",
					"description": "Text to replace",
				},
				"new_string": map[string]any{
					"type":        "string",
					"description": "Replacement text",
				},
			},
			"required": []any{"old_string", "new_string"},
		},
		Handler: func(ctx context.Context, args map[string]any) (Result, error) {
			oldStr, err := stringArg(args, "old_string")
			if err != nil {
				return Result{}, err
			}
			newStr, err := stringArg(args, "new_string")
			if err != nil {
				return Result{}, err
			}
			if oldStr == "" {
				return Result{}, fmt.Errorf("%w: old_string must not be empty", ErrInvalidArgument)
			}
			return s.run(ctx, func(ctx context.Context) (Result, error) {
				doc, err := s.docs.ResolveActive(ctx, s.cfg.Session)
				if err != nil {
					return Result{}, err
				}
				n, err := s.cfg.Session.ReplaceText(ctx, doc.ID, oldStr, newStr)
				if err != nil {
					return Result{}, err
				}
				return TextResult(fmt.Sprintf("Replaced %d occurrence(s) in document %s", n, doc.ID)), nil
			})
		},
	}
}

func (s *Service) sourceDocumentTool() Tool {
	return Tool{
		Name: "source_active_document",
		Description: "Execute the active document as R code. With start_line/end_line, only that " +
			"slice is executed and the document selection is set to it afterwards.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_line": map[string]any{
					"type":        "integer",
					"description": "1-based first line to execute (requires end_line)",
				},
				"end_line": map[string]any{
					"type":        "integer",
					"description": "1-based last line to execute, inclusive (requires start_line)",
				},
			},
		},
		Handler: s.handleSourceDocument,
	}
}

func (s *Service) handleSourceDocument(ctx context.Context, args map[string]any) (Result, error) {
	startLine, hasStart, err := optionalIntArg(args, "start_line")
	if err != nil {
		return Result{}, err
	}
	endLine, hasEnd, err := optionalIntArg(args, "end_line")
	if err != nil {
		return Result{}, err
	}
	if hasStart != hasEnd {
		return Result{}, fmt.Errorf("%w: start_line and end_line must be given together", ErrInvalidArgument)
	}

	ranged := hasStart
	rng := session.Range{StartLine: startLine, EndLine: endLine}
	if ranged {
		if err := checkRangeShape(rng); err != nil {
			return Result{}, err
		}
	}

	return s.run(ctx, func(ctx context.Context) (Result, error) {
		doc, err := s.docs.ResolveActive(ctx, s.cfg.Session)
		if err != nil {
			return Result{}, err
		}
		contents, err := s.cfg.Session.DocumentContents(ctx, doc.ID)
		if err != nil {
			return Result{}, err
		}

		code := contents
		if ranged {
			// Bounds depend on the buffer as read inside the lane;
			// an out-of-range failure here still precedes any
			// execution, so no partial state is left behind.
			lines := splitLines(contents)
			if err := checkRangeBounds(rng, len(lines)); err != nil {
				return Result{}, err
			}
			code = strings.Join(lines[rng.StartLine-1:rng.EndLine], "\n")
		}

		if _, err := s.cfg.Session.Evaluate(ctx, code); err != nil {
			return Result{}, err
		}

		if ranged {
			// The visible selection reflects what was just sourced.
			if err := s.cfg.Session.SetSelection(ctx, doc.ID, rng); err != nil {
				return Result{}, err
			}
			return TextResult(fmt.Sprintf("Sourced document %s (lines %d-%d)", doc.ID, rng.StartLine, rng.EndLine)), nil
		}
		return TextResult(fmt.Sprintf("Sourced document %s", doc.ID)), nil
	})
}
