// Package mcpapi exposes one todo session as MCP tools over stdio or streamable HTTP.
package mcpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/evanschultz/todo/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP server identity and HTTP mount configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewServer builds the MCP server with every todo tool registered against session.
func NewServer(cfg Config, session *common.Session) (*mcpserver.MCPServer, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	cfg = normalizeConfig(cfg)
	srv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerReadTools(srv, session)
	registerDraftTools(srv, session)
	registerTaskTools(srv, session)
	registerEditTools(srv, session)
	return srv, nil
}

// NewHandler builds one stateless MCP streamable HTTP adapter over session.
func NewHandler(cfg Config, session *common.Session) (*Handler, error) {
	cfg = normalizeConfig(cfg)
	srv, err := NewServer(cfg, session)
	if err != nil {
		return nil, err
	}
	streamable := mcpserver.NewStreamableHTTPServer(
		srv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// ServeStdio serves MCP JSON-RPC over in/out until ctx ends or in closes.
func ServeStdio(ctx context.Context, cfg Config, session *common.Session, in io.Reader, out io.Writer) error {
	srv, err := NewServer(cfg, session)
	if err != nil {
		return err
	}
	if err := mcpserver.NewStdioServer(srv).Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}
	return nil
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "todo"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerReadTools registers `todo.state` and `todo.view`.
func registerReadTools(srv *mcpserver.MCPServer, session *common.Session) {
	srv.AddTool(
		mcp.NewTool(
			"todo.state",
			mcp.WithDescription("Return the task list, draft text and edit target."),
		),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := mcp.NewToolResultJSON(session.State())
			if err != nil {
				return nil, fmt.Errorf("encode state result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"todo.view",
			mcp.WithDescription("Render the task list as a plain-text table."),
		),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(session.View()), nil
		},
	)
}

// registerDraftTools registers `todo.set_draft` and `todo.add`.
func registerDraftTools(srv *mcpserver.MCPServer, session *common.Session) {
	srv.AddTool(
		mcp.NewTool(
			"todo.set_draft",
			mcp.WithDescription("Replace the shared draft text verbatim."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Draft text")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			text, err := req.RequireString("text")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON("set_draft", session.SetDraft(text))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"todo.add",
			mcp.WithDescription("Add a task from the draft, or from text when provided."),
			mcp.WithString("text", mcp.Description("Optional task text; replaces the draft before adding")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if text := req.GetString("text", ""); text != "" {
				return resultJSON("add", session.AddText(text))
			}
			return resultJSON("add", session.Add())
		},
	)
}

// registerTaskTools registers `todo.toggle` and `todo.remove`.
func registerTaskTools(srv *mcpserver.MCPServer, session *common.Session) {
	srv.AddTool(
		mcp.NewTool(
			"todo.toggle",
			mcp.WithDescription("Flip the completed flag of one task."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireID(req)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON("toggle", session.Toggle(id))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"todo.remove",
			mcp.WithDescription("Remove one task; removing the task under edit cancels editing."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireID(req)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON("remove", session.Remove(id))
		},
	)
}

// registerEditTools registers the edit lifecycle tools.
func registerEditTools(srv *mcpserver.MCPServer, session *common.Session) {
	srv.AddTool(
		mcp.NewTool(
			"todo.begin_edit",
			mcp.WithDescription("Start editing one task; the draft becomes its text."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireID(req)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON("begin_edit", session.BeginEdit(id))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"todo.save_edit",
			mcp.WithDescription("Commit the draft to the task under edit and leave edit mode."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Id of the task under edit")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := requireID(req)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return resultJSON("save_edit", session.SaveEdit(id))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"todo.cancel_edit",
			mcp.WithDescription("Leave edit mode and clear the draft."),
		),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return resultJSON("cancel_edit", session.CancelEdit())
		},
	)
}

// requireID reads the required positive integer `id` argument.
func requireID(req mcp.CallToolRequest) (int64, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return 0, fmt.Errorf("invalid_request: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid_request: id must be positive")
	}
	return int64(id), nil
}

// resultJSON encodes one transition result.
func resultJSON(op string, res common.Result) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", op, err)
	}
	return result, nil
}
