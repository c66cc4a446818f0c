package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/render"
	"rustdocmcp/internal/rustdoc"
	"rustdocmcp/internal/tools"
)

// Server dispatches JSON-RPC requests arriving on stdin to the four
// documentation tool handlers and writes their responses to stdout. It
// holds no per-session state of its own; every request operates against
// the shared DocState also read by the background worker.
type Server struct {
	state *docstate.DocState

	writeMu sync.Mutex
}

// New builds a Server over state.
func New(state *docstate.DocState) *Server {
	return &Server{state: state}
}

// Serve reads newline-delimited JSON-RPC requests from r until r is
// exhausted or ctx is canceled, dispatching each to a handler and writing
// its response to w. It returns nil on a clean EOF.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.handleLine(ctx, append([]byte(nil), line...), w)
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte, w io.Writer) {
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(w, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: fmt.Sprintf("invalid JSON: %v", err)},
		})
		return
	}

	// A notification has no ID and gets no response.
	isNotification := len(req.ID) == 0

	requestID := uuid.NewString()
	log := logging.WithRequestID(logging.CategoryMCP, requestID).WithField("method", req.Method)
	log.Debug("dispatching request")

	result, rpcErr := s.dispatch(ctx, req)
	if isNotification {
		return
	}

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		log.Error("request failed: %v", rpcErr.Message)
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	s.writeResponse(w, resp)
}

func (s *Server) dispatch(ctx context.Context, req rpcRequest) (interface{}, *rpcError) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(), nil
	case "notifications/initialized", "ping":
		return map[string]interface{}{}, nil
	case "tools/list":
		return s.handleToolsList(), nil
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (s *Server) handleInitialize() initializeResult {
	return initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    json.RawMessage(`{"tools":{}}`),
		ServerInfo:      serverInfo{Name: serverName, Version: serverVersion},
		Instructions: "A focused Rust documentation server with TF-IDF search and syntax-aware " +
			"rendering. Automatically detects the workspace on startup; use set_workspace to override.",
	}
}

func (s *Server) handleToolsList() map[string][]toolDescriptor {
	return map[string][]toolDescriptor{
		"tools": {
			{
				Name: "search",
				Description: "Search for Rust items within a crate using TF-IDF full-text search. " +
					"Searches item names and documentation, returning ranked results by relevance.",
				InputSchema: searchSchema(),
			},
			{
				Name: "inspect_item",
				Description: "Inspect a Rust item (struct, enum, function, trait, module, etc.) from " +
					"the workspace or dependencies. Supports path queries like 'Vec', 'std::vec::Vec', " +
					"or 'HashMap'. Returns formatted documentation with configurable detail levels.",
				InputSchema: inspectItemSchema(),
			},
			{
				Name: "inspect_crate",
				Description: "Inspect crate-level information. Without a crate name, lists all crates " +
					"with descriptions and stats. With a crate name, shows detailed structure including " +
					"modules, exports, and item counts.",
				InputSchema: inspectCrateSchema(),
			},
			{
				Name: "set_workspace",
				Description: "Configure the workspace path for a Rust project. Automatically discovers " +
					"workspace members and resolves dependency versions from Cargo.toml/Cargo.lock.",
				InputSchema: setWorkspaceSchema(),
			},
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, *rpcError) {
	var call toolsCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid tools/call params: %v", err)}
	}

	text, err := s.invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(text), nil
}

func (s *Server) invoke(ctx context.Context, name string, rawArgs json.RawMessage) (string, error) {
	switch name {
	case "search":
		var args struct {
			Query     string `json:"query"`
			CrateName string `json:"crate_name"`
			Limit     int    `json:"limit"`
		}
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("invalid arguments for search: %w", err)
		}
		return tools.HandleSearch(ctx, s.state, tools.SearchRequest{
			Query: args.Query, CrateName: args.CrateName, Limit: args.Limit,
		})

	case "inspect_item":
		var args struct {
			Query       string `json:"query"`
			Kind        string `json:"kind"`
			DetailLevel string `json:"detail_level"`
		}
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("invalid arguments for inspect_item: %w", err)
		}
		req := tools.InspectItemRequest{
			Query:       args.Query,
			DetailLevel: detailLevelOrDefault(args.DetailLevel),
		}
		if args.Kind != "" {
			kind := rustdoc.ItemKind(args.Kind)
			req.Kind = &kind
		}
		return tools.HandleInspectItem(ctx, s.state, req)

	case "inspect_crate":
		var args struct {
			CrateName   string `json:"crate_name"`
			DetailLevel string `json:"detail_level"`
		}
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("invalid arguments for inspect_crate: %w", err)
		}
		return tools.HandleInspectCrate(ctx, s.state, tools.InspectCrateRequest{
			CrateName: args.CrateName, DetailLevel: detailLevelOrDefault(args.DetailLevel),
		})

	case "set_workspace":
		var args struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("invalid arguments for set_workspace: %w", err)
		}
		return tools.HandleSetWorkspace(ctx, s.state, tools.SetWorkspaceRequest{Path: args.Path})

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func detailLevelOrDefault(s string) render.DetailLevel {
	if s == "" {
		return render.DefaultDetailLevel
	}
	return render.DetailLevel(s)
}

func (s *Server) writeResponse(w io.Writer, resp rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Get(logging.CategoryMCP).Error("failed to marshal response: %v", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, _ = w.Write(append(data, '\n'))
}
