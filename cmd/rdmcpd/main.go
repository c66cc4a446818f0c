// Command rdmcpd is the entry point for the Rust documentation MCP server:
// it wires together workspace detection, the background pre-generation
// worker, and the stdio tool-protocol surface, then serves JSON-RPC
// requests on stdin until the process is signaled to stop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rustdocmcp/internal/config"
	"rustdocmcp/internal/docstate"
	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/mcpserver"
	"rustdocmcp/internal/store"
	"rustdocmcp/internal/workspace"
)

var (
	workspacePath string
	configPath    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "rdmcpd",
	Short: "rdmcpd - Rust documentation MCP server",
	Long: `rdmcpd serves TF-IDF search and structured documentation lookups for a
Cargo workspace over the Model Context Protocol. It auto-detects the
workspace on startup; use the set_workspace tool to point it elsewhere.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&workspacePath, "workspace", "w", "", "Cargo workspace root (default: auto-detect from cwd)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: <workspace>/.rdmcp/config.yaml)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	// Logging writes to stderr exclusively: stdout carries the JSON-RPC
	// conversation with the MCP client and must never be polluted.
	zlog, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer zlog.Sync()

	root := resolveInitialWorkspace(ctx, zlog)

	rdmcpDir := ""
	if root != "" {
		rdmcpDir = filepath.Join(root, ".rdmcp")
	} else if cwd, err := os.Getwd(); err == nil {
		rdmcpDir = filepath.Join(cwd, ".rdmcp")
	}

	cfgPath := configPath
	if cfgPath == "" && rdmcpDir != "" {
		cfgPath = filepath.Join(rdmcpDir, "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.DebugMode = true
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if logWs := root; logWs != "" {
		if err := logging.Initialize(logWs, cfg.DebugMode, cfg.LogLevel, cfg.LogJSON, cfg.LogCategories); err != nil {
			zlog.Warn("failed to initialize file logging", zap.Error(err))
		}
	}
	defer logging.CloseAll()

	var st *store.Store
	if rdmcpDir != "" {
		if err := os.MkdirAll(rdmcpDir, 0755); err != nil {
			zlog.Warn("failed to create .rdmcp directory, running without persistence", zap.Error(err))
		} else {
			st, err = store.Open(filepath.Join(rdmcpDir, "index.db"))
			if err != nil {
				zlog.Warn("failed to open persistence store, running without it", zap.Error(err))
				st = nil
			} else {
				defer st.Close()
			}
		}
	}

	state, err := docstate.New(st)
	if err != nil {
		return fmt.Errorf("failed to initialize doc state: %w", err)
	}

	if root != "" {
		if wsCtx, err := workspace.BuildContext(ctx, root); err != nil {
			zlog.Warn("auto-detected workspace failed validation", zap.String("root", root), zap.Error(err))
		} else {
			state.SetWorkspace(wsCtx)
			zlog.Info("workspace configured",
				zap.String("root", root),
				zap.Int("members", len(wsCtx.Members)),
				zap.Int("crates", len(wsCtx.CrateInfo)),
			)
		}
	} else {
		zlog.Info("no workspace auto-detected; waiting for a set_workspace call")
	}

	worker := docstate.NewBackgroundWorker(state)
	go worker.Run(ctx)

	zlog.Info("rdmcpd ready, serving MCP over stdio")
	srv := mcpserver.New(state)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server exited: %w", err)
	}

	zlog.Info("rdmcpd shutting down")
	return nil
}

// resolveInitialWorkspace returns the workspace root rdmcpd should start
// with: the explicit --workspace flag if given, otherwise the result of
// walking up from the current directory looking for a Cargo.toml. Returns
// "" if neither yields a usable root; the server then starts without a
// workspace and waits for set_workspace.
func resolveInitialWorkspace(ctx context.Context, zlog *zap.Logger) string {
	if workspacePath != "" {
		expanded := workspace.ExpandTilde(workspacePath)
		abs, err := filepath.Abs(expanded)
		if err != nil {
			zlog.Warn("failed to resolve --workspace path", zap.String("path", workspacePath), zap.Error(err))
			return ""
		}
		return abs
	}

	detected, ok := workspace.AutoDetectWorkspace(ctx)
	if !ok {
		return ""
	}
	return detected
}
