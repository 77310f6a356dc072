package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sammcj/mcp-pdfedit/internal/cli"
	"github.com/sammcj/mcp-pdfedit/internal/config"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/extract"
	"github.com/sammcj/mcp-pdfedit/internal/registry"
	"github.com/sammcj/mcp-pdfedit/internal/storage"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sammcj/mcp-pdfedit/internal/tools/pdfedit"
	"github.com/sammcj/mcp-pdfedit/internal/tools/toolhelp"
	"github.com/sirupsen/logrus"
	ucli "github.com/urfave/cli/v3"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global resources that need cleanup
var (
	debugLogFile atomic.Pointer[os.File]
	toolErrorLog atomic.Pointer[tools.ErrorLog]
	isStdioMode  atomic.Bool
)

const (
	// DefaultMemoryLimit is the default soft memory limit (2GB). Rendering holds
	// every page of a document in memory.
	DefaultMemoryLimit = 2 * 1024 * 1024 * 1024
)

// parseLogLevel parses the LOG_LEVEL environment variable and returns the appropriate logrus level.
// Defaults to WarnLevel if not set or invalid.
func parseLogLevel() logrus.Level {
	logLevelStr := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))

	switch logLevelStr {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

// setMemoryLimit configures the Go runtime memory limit
func setMemoryLimit() {
	var memLimit int64 = DefaultMemoryLimit
	if memLimitStr := os.Getenv("MCP_PDFEDIT_MEMORY_LIMIT"); memLimitStr != "" {
		if parsed, err := strconv.ParseInt(memLimitStr, 10, 64); err == nil && parsed > 0 {
			memLimit = parsed
		}
	}
	debug.SetMemoryLimit(memLimit)
}

func main() {
	setMemoryLimit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Output is discarded until the transport mode is known
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	registry.Init(logger)

	defer performCleanup()

	app := &ucli.Command{
		Name:    "mcp-pdfedit",
		Usage:   "MCP server and command line for natural-language PDF editing",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&ucli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port to use for HTTP transports (SSE and Streamable HTTP)",
			},
			&ucli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&ucli.StringFlag{
				Name:    "auth-token",
				Usage:   "Bearer token required on every request to the SSE and Streamable HTTP transports (optional)",
				Sources: ucli.EnvVars("MCP_PDFEDIT_AUTH_TOKEN"),
			},
			&ucli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for Streamable HTTP transport",
			},
			&ucli.DurationFlag{
				Name:  "session-timeout",
				Value: 30 * time.Minute,
				Usage: "Session timeout for Streamable HTTP transport",
			},
		},
		Commands: []*ucli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					fmt.Printf("mcp-pdfedit version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			editCommand(logger),
			extractCommand(logger),
			probeCommand(logger),
			cliCommand(logger),
		},
		Action: func(cliCtx context.Context, cmd *ucli.Command) error {
			transport := cmd.String("transport")
			isStdioMode.Store(transport == "stdio")
			configureLogging(logger, transport == "stdio")

			if transport != "stdio" {
				logger.Infof("Starting mcp-pdfedit version %s (commit: %s, built: %s)",
					Version, Commit, BuildDate)
			}

			openToolErrorLog(logger)

			svc, err := newService(logger)
			if err != nil {
				return err
			}
			registerTools(svc)

			mcpSrv := mcpserver.NewMCPServer("mcp-pdfedit", Version)
			addTools(mcpSrv, logger, transport)

			logger.WithField("transport", transport).Debug("Starting server")
			switch transport {
			case "stdio":
				return mcpserver.ServeStdio(mcpSrv)
			case "sse":
				port := cmd.String("port")
				logger.WithField("port", port).Debug("Starting SSE server")
				sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(cmd.String("base-url")+"/sse"))
				return http.ListenAndServe(":"+port, createAuthMiddleware(cmd.String("auth-token"), logger)(sseServer))
			case "http":
				return startStreamableHTTPServer(cliCtx, cmd, mcpSrv, logger)
			default:
				return fmt.Errorf("unsupported transport: %s", transport)
			}
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		// Nothing may be written to stdout or stderr in stdio mode
		if !isStdioMode.Load() {
			cli.PrintError(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

// configureLogging sends logs to ~/.mcp-pdfedit/logs/mcp-pdfedit.log. When
// the file cannot be opened logs go to stderr, or nowhere in stdio mode.
func configureLogging(logger *logrus.Logger, stdio bool) {
	logLevel := parseLogLevel()
	if stdio && logLevel < logrus.WarnLevel {
		logLevel = logrus.WarnLevel
	}
	logger.SetLevel(logLevel)
	logrus.SetLevel(logLevel)

	var out io.Writer = os.Stderr
	if stdio {
		out = io.Discard
	}

	if file, err := openLogFile(); err == nil {
		debugLogFile.Store(file)
		out = file
	}

	logger.SetOutput(out)
	logrus.SetOutput(out)
	logger.WithField("level", logLevel.String()).Debug("Logging configured")
}

func openLogFile() (*os.File, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	logDir := filepath.Join(homeDir, ".mcp-pdfedit", "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(logDir, "mcp-pdfedit.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// newService loads configuration and builds the editing service.
func newService(logger *logrus.Logger) (*editor.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Debug && logger.GetLevel() < logrus.DebugLevel && !isStdioMode.Load() {
		logger.SetLevel(logrus.DebugLevel)
	}
	return editor.NewService(cfg, logger)
}

// registerTools adds every PDF editing tool to the registry, followed by the
// help tool that describes them.
func registerTools(svc *editor.Service) {
	for _, tool := range pdfedit.All(svc) {
		registry.Register(tool)
	}
	registry.Register(&toolhelp.ToolHelpTool{})
}

// addTools exposes registered tools on the MCP server.
func addTools(mcpSrv *mcpserver.MCPServer, logger *logrus.Logger, transport string) {
	enabledTools := registry.GetTools()
	logger.WithField("tool_count", len(enabledTools)).Debug("Registering tools")

	for name, tool := range enabledTools {
		if transport != "stdio" {
			logger.Infof("Registering tool: %s", name)
		}

		mcpSrv.AddTool(tool.Definition(), func(toolCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			currentTool, ok := registry.GetTool(name)
			if !ok {
				return nil, fmt.Errorf("tool not found: %s", name)
			}

			args, ok := request.Params.Arguments.(map[string]any)
			if !ok {
				if request.Params.Arguments != nil {
					return nil, fmt.Errorf("invalid arguments type: expected map[string]any, got %T", request.Params.Arguments)
				}
				args = map[string]any{}
			}

			result, err := currentTool.Execute(toolCtx, registry.GetLogger(), args)
			if err != nil {
				logger.WithError(err).WithField("tool", name).Error("Tool execution failed")
				toolErrorLog.Load().Record(name, args, err, transport)
				return nil, fmt.Errorf("tool execution failed: %w", err)
			}
			return result, nil
		})
	}
}

// commandSetup prepares logging, the service and the registry for a terminal
// command. Logs go to stderr so stdout carries only results.
func commandSetup(logger *logrus.Logger) (*editor.Service, error) {
	configureLogging(logger, false)
	if debugLogFile.Load() == nil {
		logger.SetOutput(os.Stderr)
	}
	svc, err := newService(logger)
	if err != nil {
		return nil, err
	}
	registerTools(svc)
	return svc, nil
}

func jsonFlag() *ucli.BoolFlag {
	return &ucli.BoolFlag{Name: "json", Usage: "Print the result as JSON"}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func editCommand(logger *logrus.Logger) *ucli.Command {
	return &ucli.Command{
		Name:      "edit",
		Usage:     "Edit a PDF from a natural-language instruction and write the result",
		ArgsUsage: "<file.pdf|url>",
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:     "instruction",
				Aliases:  []string{"i"},
				Usage:    "What to change in the document",
				Required: true,
			},
			&ucli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory or URL for the edited file (default: PDFEDIT_OUTPUT_DIR or ~/.mcp-pdfedit/exports)",
			},
			&ucli.StringFlag{
				Name:    "api-key",
				Usage:   "Gemini API key for this run",
				Sources: ucli.EnvVars("PDFEDIT_API_KEY"),
			},
			jsonFlag(),
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one PDF path or URL")
			}
			svc, err := commandSetup(logger)
			if err != nil {
				return err
			}

			result, runErr := svc.Run(ctx, editor.RunOptions{
				Location:    cmd.Args().First(),
				Instruction: cmd.String("instruction"),
				APIKey:      cmd.String("api-key"),
				OutputDir:   cmd.String("output-dir"),
			})
			if cmd.Bool("json") {
				if err := printJSON(result); err != nil {
					return err
				}
			} else {
				cli.PrintRun(os.Stdout, result)
			}
			return runErr
		},
	}
}

func extractCommand(logger *logrus.Logger) *ucli.Command {
	return &ucli.Command{
		Name:      "extract",
		Usage:     "Print the text of a PDF, or its positioned spans with --spans",
		ArgsUsage: "<file.pdf|url>",
		Flags: []ucli.Flag{
			&ucli.BoolFlag{Name: "spans", Usage: "Print spans with geometry and font instead of plain text"},
			jsonFlag(),
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one PDF path or URL")
			}
			configureLogging(logger, false)
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			store := storage.New(cfg.MaxFileSize(), logger).WithPolicy(storage.NewPolicy(cfg.DenyPaths, cfg.DenyDomains))
			data, err := store.Read(ctx, cmd.Args().First())
			if err != nil {
				return err
			}

			if cmd.Bool("spans") {
				pages, err := extract.Spans(data)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(pages)
				}
				for _, page := range pages {
					fmt.Printf("page %d (%.0fx%.0f)\n", page.Index+1, page.Width, page.Height)
					for _, span := range page.Spans {
						fmt.Printf("  [%6.1f %6.1f %6.1f %6.1f] %s %.1f  %s\n",
							span.BBox.X0, span.BBox.Y0, span.BBox.X1, span.BBox.Y1,
							span.FontName, span.FontSize, span.Text)
					}
				}
				return nil
			}

			text, err := extract.PlainText(data)
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return printJSON(map[string]string{"text": text})
			}
			fmt.Print(text)
			return nil
		},
	}
}

func probeCommand(logger *logrus.Logger) *ucli.Command {
	return &ucli.Command{
		Name:  "probe",
		Usage: "Find the first configured model that answers with the given credential",
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "api-key",
				Usage:   "Gemini API key to probe (default: GEMINI_API_KEY)",
				Sources: ucli.EnvVars("PDFEDIT_API_KEY"),
			},
			jsonFlag(),
		},
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			svc, err := commandSetup(logger)
			if err != nil {
				return err
			}
			status, err := svc.Probe(ctx, cmd.String("api-key"))
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				if err := printJSON(status); err != nil {
					return err
				}
			} else {
				cli.PrintProbe(os.Stdout, status)
			}
			if !status.Ready {
				return editor.ErrModelUnavailable
			}
			return nil
		},
	}
}

func cliCommand(logger *logrus.Logger) *ucli.Command {
	outputFlag := &ucli.StringFlag{
		Name:  "output",
		Value: string(cli.OutputText),
		Usage: "Output format (text or json)",
	}
	runner := func(cmd *ucli.Command) (*cli.Runner, error) {
		if _, err := commandSetup(logger); err != nil {
			return nil, err
		}
		format := cli.OutputFormat(cmd.String("output"))
		if format != cli.OutputText && format != cli.OutputJSON {
			return nil, fmt.Errorf("unsupported output format: %s", format)
		}
		return cli.NewRunner(logger, format, os.Stdout), nil
	}

	return &ucli.Command{
		Name:  "cli",
		Usage: "Run the MCP tools directly from the command line",
		Commands: []*ucli.Command{
			{
				Name:  "list",
				Usage: "List available tools",
				Flags: []ucli.Flag{outputFlag},
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					r, err := runner(cmd)
					if err != nil {
						return err
					}
					return r.ListTools()
				},
			},
			{
				Name:      "help",
				Usage:     "Show a tool's parameters",
				ArgsUsage: "<tool>",
				Flags:     []ucli.Flag{outputFlag},
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected a tool name")
					}
					r, err := runner(cmd)
					if err != nil {
						return err
					}
					return r.HelpTool(cmd.Args().First())
				},
			},
			{
				Name:            "run",
				Usage:           "Run a tool with --param=value flags or a JSON object",
				ArgsUsage:       "<tool> [--param value ...]",
				SkipFlagParsing: true,
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					args := cmd.Args().Slice()
					if len(args) == 0 {
						return fmt.Errorf("expected a tool name")
					}

					format := cli.OutputText
					toolArgs := make([]string, 0, len(args)-1)
					for _, arg := range args[1:] {
						if value, ok := strings.CutPrefix(arg, "--output="); ok {
							format = cli.OutputFormat(value)
							continue
						}
						toolArgs = append(toolArgs, arg)
					}

					if _, err := commandSetup(logger); err != nil {
						return err
					}
					return cli.NewRunner(logger, format, os.Stdout).RunTool(ctx, args[0], toolArgs)
				},
			},
		},
	}
}

// openToolErrorLog enables the tool error log when LOG_TOOL_ERRORS is set and
// prunes old entries in the background.
func openToolErrorLog(logger *logrus.Logger) {
	errLog, err := tools.OpenErrorLog(logger)
	if err != nil {
		logger.WithError(err).Debug("Failed to open tool error log")
		return
	}
	if errLog == nil {
		return
	}
	toolErrorLog.Store(errLog)
	logger.Infof("Tool error logging enabled: %s", errLog.Path())

	go func() {
		if err := errLog.Prune(tools.ErrorLogRetention); err != nil {
			logger.WithError(err).Warn("Failed to prune tool error log")
		}
	}()
}

// performCleanup handles cleanup of resources on shutdown
func performCleanup() {
	if errLog := toolErrorLog.Load(); errLog != nil {
		_ = errLog.Close()
	}
	if file := debugLogFile.Load(); file != nil {
		_ = file.Close()
	}
}

// startStreamableHTTPServer configures and starts the Streamable HTTP server with graceful shutdown
func startStreamableHTTPServer(ctx context.Context, cmd *ucli.Command, mcpServer *mcpserver.MCPServer, logger *logrus.Logger) error {
	port := cmd.String("port")
	authToken := cmd.String("auth-token")
	endpointPath := cmd.String("endpoint-path")
	sessionTimeout := cmd.Duration("session-timeout")

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", port, endpointPath)

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(endpointPath),
		mcpserver.WithHTTPContextFunc(createRequestContextFunc(logger)),
		mcpserver.WithLogger(&logrusAdapter{logger: logger}),
	}

	heartbeatInterval := 30 * time.Second
	if sessionTimeout > 0 {
		opts = append(opts, mcpserver.WithSessionIdManager(NewTimeoutSessionManager(sessionTimeout, logger)))
		heartbeatInterval = sessionTimeout / 4
	}
	opts = append(opts, mcpserver.WithHeartbeatInterval(heartbeatInterval))

	mux := http.NewServeMux()
	mux.Handle(endpointPath, createAuthMiddleware(authToken, logger)(mcpserver.NewStreamableHTTPServer(mcpServer, opts...)))

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        mux,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute, // model calls and rendering can be slow
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case serverErr <- err:
			case <-ctx.Done():
			}
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown failed")
		return err
	}

	logger.Info("HTTP server stopped gracefully")
	return nil
}

// createRequestContextFunc logs protocol version and origin problems for
// each Streamable HTTP request.
func createRequestContextFunc(logger *logrus.Logger) mcpserver.HTTPContextFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		if protocolVersion := req.Header.Get("MCP-Protocol-Version"); protocolVersion != "" {
			if !isValidProtocolVersion(protocolVersion) {
				logger.Warnf("Unsupported MCP Protocol Version: %s", protocolVersion)
			} else {
				logger.Debugf("MCP Protocol Version: %s", protocolVersion)
			}
		}

		// DNS rebinding protection
		if origin := req.Header.Get("Origin"); origin != "" && !isValidOrigin(origin) {
			logger.Warnf("Invalid Origin header: %s", origin)
		}
		return ctx
	}
}

// createAuthMiddleware rejects requests without the expected Bearer token
// with 401. An empty token disables the check.
func createAuthMiddleware(expectedToken string, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expectedToken == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
			switch {
			case !ok:
				logger.Warn("Request missing Bearer token")
			case subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1:
				logger.Warn("Invalid authentication token")
			default:
				logger.Debug("Request authenticated successfully")
				next.ServeHTTP(w, req)
				return
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp-pdfedit"`)
			http.Error(w, "unauthorised", http.StatusUnauthorized)
		})
	}
}

// isValidProtocolVersion checks if the MCP protocol version is supported
func isValidProtocolVersion(version string) bool {
	return slices.Contains([]string{"2025-06-18", "2025-03-26", "2024-11-05"}, version)
}

// isValidOrigin validates the Origin header to prevent DNS rebinding attacks
func isValidOrigin(origin string) bool {
	for _, allowed := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if origin == allowed || strings.HasPrefix(origin, allowed+":") {
			return true
		}
	}
	return false
}

// TimeoutSessionManager issues MCP session ids and expires them after a
// period without activity.
type TimeoutSessionManager struct {
	timeout time.Duration
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewTimeoutSessionManager creates a session manager with the given idle timeout.
func NewTimeoutSessionManager(timeout time.Duration, logger *logrus.Logger) *TimeoutSessionManager {
	return &TimeoutSessionManager{
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

// Generate issues a new session id and drops sessions that have been idle
// past the timeout.
func (t *TimeoutSessionManager) Generate() string {
	id := uuid.NewString()
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for existing, seen := range t.lastSeen {
		if now.Sub(seen) > t.timeout {
			delete(t.lastSeen, existing)
		}
	}
	t.lastSeen[id] = now
	return id
}

// Len returns the number of live sessions being tracked.
func (t *TimeoutSessionManager) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lastSeen)
}

// Validate reports whether the session has been terminated. Unknown and
// expired sessions count as terminated; live sessions are refreshed.
func (t *TimeoutSessionManager) Validate(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("empty session ID")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seen, ok := t.lastSeen[sessionID]
	if !ok {
		return true, nil
	}
	now := t.now()
	if now.Sub(seen) > t.timeout {
		delete(t.lastSeen, sessionID)
		t.logger.Debugf("Session expired: %s", sessionID)
		return true, nil
	}
	t.lastSeen[sessionID] = now
	return false, nil
}

func (t *TimeoutSessionManager) Terminate(sessionID string) (bool, error) {
	t.mu.Lock()
	delete(t.lastSeen, sessionID)
	t.mu.Unlock()
	t.logger.Debugf("Session terminated: %s", sessionID)
	return false, nil
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Warnf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
