// Package mcpapi provides a stateless MCP streamable-HTTP adapter over the
// action engine.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/dagord/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the action engine.
func NewHandler(cfg Config, eng *engine.Engine) (*Handler, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerExecuteTool(mcpSrv, eng)
	registerListTools(mcpSrv, eng)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
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

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "dagord"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerExecuteTool registers the `dagord.execute_action` tool. The result
// is always the engine's structured envelope, so agents can branch on
// success, matchedCount, and confirmation prompts without parsing errors.
func registerExecuteTool(srv *mcpserver.MCPServer, eng *engine.Engine) {
	srv.AddTool(
		mcp.NewTool(
			"dagord.execute_action",
			mcp.WithDescription("Execute one structured productivity action. Bulk deletes and filtered updates must set the matching confirmation flags."),
			mcp.WithString("entity", mcp.Required(), mcp.Description("Target entity"), mcp.Enum("event", "task", "habit", "goal", "category")),
			mcp.WithString("action", mcp.Required(), mcp.Description("Action to perform, e.g. create, update, delete, list, search, complete, log, progress")),
			mcp.WithObject("parameters", mcp.Description("Action parameters. Omitted fields keep current values; explicit nulls clear them.")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				Entity     string         `json:"entity"`
				Action     string         `json:"action"`
				Parameters map[string]any `json:"parameters"`
			}
			if err := req.BindArguments(&args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res := eng.Execute(ctx, engine.Command{
				Entity:     args.Entity,
				Action:     args.Action,
				Parameters: args.Parameters,
			})
			result, err := mcp.NewToolResultJSON(res)
			if err != nil {
				return nil, fmt.Errorf("encode execute_action result: %w", err)
			}
			return result, nil
		},
	)
}

// registerListTools registers one read-only list tool per entity.
func registerListTools(srv *mcpserver.MCPServer, eng *engine.Engine) {
	for _, entity := range []string{"event", "task", "habit", "goal", "category"} {
		entity := entity
		srv.AddTool(
			mcp.NewTool(
				"dagord.list_"+entity+"s",
				mcp.WithDescription("List "+entity+" entries, optionally filtered."),
				mcp.WithString("query", mcp.Description("Substring match on titles and notes")),
				mcp.WithString("category", mcp.Description("Category name or id")),
				mcp.WithString("date", mcp.Description("Civil day (YYYY-MM-DD), events and tasks only")),
				mcp.WithBoolean("completed", mcp.Description("Completion filter, events and tasks only")),
			),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var params map[string]any
				if err := req.BindArguments(&params); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				res, err := eng.Run(ctx, engine.Command{Entity: entity, Action: "list", Parameters: params})
				if err != nil {
					return toolResultFromError(err), nil
				}
				result, err := mcp.NewToolResultJSON(res)
				if err != nil {
					return nil, fmt.Errorf("encode list result: %w", err)
				}
				return result, nil
			},
		)
	}
}

// toolResultFromError maps engine errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, engine.ErrConfirmationRequired):
		return mcp.NewToolResultError("confirmation_required: " + err.Error())
	case errors.Is(err, engine.ErrDecode),
		errors.Is(err, engine.ErrRequiredField),
		errors.Is(err, engine.ErrInvalidIdentifier),
		errors.Is(err, engine.ErrRange):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, engine.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, engine.ErrUnsupportedAction):
		return mcp.NewToolResultError("unsupported_action: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
