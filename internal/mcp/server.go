package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/logging"
	"github.com/nvandessel/graphism/internal/ratelimit"
	"github.com/nvandessel/graphism/internal/store"
)

// Tool names.
const (
	ToolSimulate = "graphism_simulate"
	ToolStats    = "graphism_stats"
	ToolGraphs   = "graphism_graphs"
	ToolSave     = "graphism_save"
)

// Server wraps the MCP SDK server and provides graphism-specific functionality.
type Server struct {
	server       *sdk.Server
	store        store.EdgeStore
	settings     *config.GraphismConfig
	toolLimiters ratelimit.ToolLimiters
	logger       *slog.Logger
	auditLogger  *AuditLogger

	closeOnce sync.Once
	closeErr  error
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "graphism")
	Version string // Server version

	// Store holds saved graphs. The server takes ownership and closes it.
	Store store.EdgeStore

	// Settings supplies simulation defaults and rate limits. Nil means
	// config.Default().
	Settings *config.GraphismConfig

	Logger *slog.Logger

	// AuditPath is the JSONL audit log. Empty disables auditing to file.
	AuditPath string
}

// NewServer creates a new MCP server with graphism tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("mcp server requires an edge store")
	}

	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var audit *AuditLogger
	if cfg.AuditPath != "" {
		var err error
		audit, err = NewAuditLogger(cfg.AuditPath)
		if err != nil {
			// Auditing is best effort; the server still starts.
			logger.Warn("audit log disabled", "path", cfg.AuditPath, "error", err)
		}
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("client initialized")
		},
	})

	s := &Server{
		server:   mcpServer,
		store:    cfg.Store,
		settings: settings,
		toolLimiters: ratelimit.NewToolLimiters(settings.MCP.RateLimit, settings.MCP.Burst,
			ToolSimulate, ToolStats, ToolGraphs, ToolSave),
		logger:      logger,
		auditLogger: audit,
	}

	s.registerTools()

	return s, nil
}

// Run serves the MCP protocol over stdio until the client disconnects or
// ctx is cancelled, then closes the server.
func (s *Server) Run(ctx context.Context) error {
	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close closes the store and the audit log. Later calls return the
// first call's error.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.store.Close(), s.auditLogger.Close())
	})
	return s.closeErr
}
