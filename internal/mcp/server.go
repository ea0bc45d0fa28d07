// Package mcp exposes mnemo's knowledge operations as an MCP (Model
// Context Protocol) server over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mnemohq/mnemo/internal/auth"
	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/intel"
	"github.com/mnemohq/mnemo/internal/logging"
	"github.com/mnemohq/mnemo/internal/ratelimit"
	"github.com/mnemohq/mnemo/internal/workspace"
)

// TokenEnv names the environment variable clients use to pass their
// access token when the server has auth configured.
const TokenEnv = "MNEMO_TOKEN"

// Server wraps the MCP SDK server around the workspace engines.
type Server struct {
	server       *sdk.Server
	cfg          *config.Config
	ws           *workspace.Manager
	intel        *intel.Layer
	trace        *logging.TraceLogger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters
	role         auth.Role
	root         string
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "mnemo")
	Version string // Server version
	Root    string // Project root directory
}

// NewServer opens the configured workspaces and builds an MCP server
// with the mnemo tools registered. When the loaded config carries an
// auth secret, the MNEMO_TOKEN environment variable must hold a valid
// token; the token's role gates write and admin tools.
func NewServer(cfg *Config) (*Server, error) {
	fileCfg, err := config.Load(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Stdout carries the MCP transport, so logs go to stderr.
	log := logging.NewLogger(fileCfg.Logging.Level, os.Stderr)

	role := auth.RoleAdmin
	if fileCfg.Auth.Secret != "" {
		authenticator, err := auth.New(fileCfg.Auth.Secret, fileCfg.Auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("configuring auth: %w", err)
		}
		claims, err := authenticator.Verify(os.Getenv(TokenEnv))
		if err != nil {
			return nil, fmt.Errorf("verifying %s: %w", TokenEnv, err)
		}
		role = claims.Role
		log = log.With("subject", claims.Subject, "role", string(role))
	}

	ws, err := workspace.Open(cfg.Root, fileCfg, log)
	if err != nil {
		return nil, fmt.Errorf("opening workspaces: %w", err)
	}

	trace := logging.NewTraceLogger(cfg.Root, fileCfg.Logging.Level)

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server:       mcpServer,
		cfg:          fileCfg,
		ws:           ws,
		intel:        intel.New(ws, log, trace),
		trace:        trace,
		auditLogger:  NewAuditLogger(cfg.Root),
		toolLimiters: ratelimit.NewToolLimiters(),
		role:         role,
		root:         cfg.Root,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdio. It blocks until the client disconnects,
// the context is cancelled, or an interrupt arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if closeErr := s.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Close releases the workspaces and log files.
func (s *Server) Close() error {
	err := s.ws.Close()
	s.trace.Close()
	if auditErr := s.auditLogger.Close(); auditErr != nil && err == nil {
		err = auditErr
	}
	return err
}

// requireWriter rejects the call unless the session role can write.
func (s *Server) requireWriter(tool string) error {
	if !s.role.CanWrite() {
		return fmt.Errorf("%s requires the writer role, token grants %q", tool, s.role)
	}
	return nil
}

// requireAdmin rejects the call unless the session role is admin.
func (s *Server) requireAdmin(tool string) error {
	if !s.role.CanAdmin() {
		return fmt.Errorf("%s requires the admin role, token grants %q", tool, s.role)
	}
	return nil
}
