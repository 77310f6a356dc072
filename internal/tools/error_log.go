package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvLogToolErrors enables the tool error log when set to "true".
const EnvLogToolErrors = "LOG_TOOL_ERRORS"

// ErrorLogRetention is how long entries are kept when the log is pruned.
const ErrorLogRetention = 60 * 24 * time.Hour

// Arguments never written to the error log.
var redactedArgs = map[string]bool{"api_key": true}

// maxLoggedArgLength bounds string arguments such as inline edit lists.
const maxLoggedArgLength = 500

// ErrorLogEntry is one failed tool call.
type ErrorLogEntry struct {
	Timestamp string         `json:"timestamp"`
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Error     string         `json:"error"`
	Transport string         `json:"transport,omitempty"`
}

// ErrorLog appends failed tool calls to a JSON-lines file. A nil *ErrorLog
// is valid and records nothing.
type ErrorLog struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	logger *logrus.Logger
	now    func() time.Time
}

// OpenErrorLog opens ~/.mcp-pdfedit/logs/tool-errors.log when LOG_TOOL_ERRORS
// is "true" and returns nil otherwise.
func OpenErrorLog(logger *logrus.Logger) (*ErrorLog, error) {
	if os.Getenv(EnvLogToolErrors) != "true" {
		return nil, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewErrorLog(filepath.Join(homeDir, ".mcp-pdfedit", "logs", "tool-errors.log"), logger)
}

// NewErrorLog opens path for appending, creating its directory.
func NewErrorLog(path string, logger *logrus.Logger) (*ErrorLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	l := &ErrorLog{path: path, logger: logger, now: time.Now}
	if err := l.reopenLocked(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the log file location.
func (l *ErrorLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record appends a failed call. Credentials are redacted and long string
// arguments truncated.
func (l *ErrorLog) Record(toolName string, args map[string]any, callErr error, transport string) {
	if l == nil || callErr == nil {
		return
	}

	entry := ErrorLogEntry{
		ToolName:  toolName,
		Arguments: sanitiseArgs(args),
		Error:     callErr.Error(),
		Transport: transport,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	entry.Timestamp = l.now().Format(time.RFC3339)

	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.WithError(err).Error("Failed to marshal tool error log entry")
		return
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		l.logger.WithError(err).Error("Failed to write tool error log entry")
	}
}

// Prune drops entries older than the retention period. Malformed lines are
// kept.
func (l *ErrorLog) Prune(retention time.Duration) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file for pruning: %w", err)
		}
		l.file = nil
	}

	kept, err := l.recentLines(l.now().Add(-retention))
	if err != nil {
		_ = l.reopenLocked()
		return err
	}

	tmpPath := l.path + ".tmp"
	content := ""
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}
	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		_ = l.reopenLocked()
		return fmt.Errorf("failed to write pruned log file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		_ = l.reopenLocked()
		return fmt.Errorf("failed to replace log file: %w", err)
	}
	return l.reopenLocked()
}

// Close closes the log file.
func (l *ErrorLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *ErrorLog) recentLines(cutoff time.Time) ([]string, error) {
	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var kept []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry ErrorLogEntry
		if json.Unmarshal([]byte(line), &entry) != nil {
			kept = append(kept, line)
			continue
		}
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil || ts.After(cutoff) {
			kept = append(kept, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return kept, nil
}

// reopenLocked opens the log file for appending. Caller must hold l.mu.
func (l *ErrorLog) reopenLocked() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open tool error log file: %w", err)
	}
	l.file = file
	return nil
}

func sanitiseArgs(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if redactedArgs[k] {
			out[k] = "[redacted]"
			continue
		}
		if s, ok := v.(string); ok && len(s) > maxLoggedArgLength {
			v = s[:maxLoggedArgLength] + "..."
		}
		out[k] = v
	}
	return out
}
