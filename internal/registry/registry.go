package registry

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

var (
	mu sync.RWMutex

	// toolRegistry is a map of tool names to tool implementations
	toolRegistry = make(map[string]tools.Tool)

	// disabledTools is a set of normalised tool names to disable
	disabledTools = make(map[string]bool)

	// logger is the shared logger instance
	logger *logrus.Logger
)

// Init initialises the registry and shared resources. Previously registered
// tools are dropped.
func Init(l *logrus.Logger) {
	mu.Lock()
	defer mu.Unlock()

	logger = l
	toolRegistry = make(map[string]tools.Tool)
	parseDisabledTools()
}

// normalise lowercases a tool name and treats hyphens and underscores alike
func normalise(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

// parseDisabledTools parses the DISABLED_TOOLS environment variable
func parseDisabledTools() {
	disabledTools = make(map[string]bool)

	disabledEnv := os.Getenv("DISABLED_TOOLS")
	if disabledEnv == "" {
		return
	}

	for tool := range strings.SplitSeq(disabledEnv, ",") {
		if tool = normalise(tool); tool != "" {
			disabledTools[tool] = true
			if logger != nil {
				logger.WithField("tool", tool).Debug("Tool disabled")
			}
		}
	}

	if logger != nil && len(disabledTools) > 0 {
		logger.WithField("count", len(disabledTools)).Debug("Parsed disabled tools from environment")
	}
}

// ShouldRegisterTool reports whether a tool is allowed by DISABLED_TOOLS
func ShouldRegisterTool(toolName string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return !disabledTools[normalise(toolName)]
}

// Register adds a tool implementation to the registry if it is not disabled
func Register(tool tools.Tool) {
	toolName := tool.Definition().Name

	if !ShouldRegisterTool(toolName) {
		if logger != nil {
			logger.WithField("tool", toolName).Debug("Tool not registered (disabled)")
		}
		return
	}

	mu.Lock()
	toolRegistry[toolName] = tool
	mu.Unlock()

	if logger != nil {
		logger.WithField("tool", toolName).Debug("Tool successfully registered")
	}
}

// GetTool retrieves a tool by name
func GetTool(name string) (tools.Tool, bool) {
	mu.RLock()
	defer mu.RUnlock()
	tool, ok := toolRegistry[name]
	return tool, ok
}

// GetTools returns all registered tools
func GetTools() map[string]tools.Tool {
	mu.RLock()
	defer mu.RUnlock()

	out := make(map[string]tools.Tool, len(toolRegistry))
	for name, tool := range toolRegistry {
		out[name] = tool
	}
	return out
}

// GetLogger returns the shared logger instance
func GetLogger() *logrus.Logger {
	return logger
}

// GetEnabledToolNames returns a sorted list of registered tool names
func GetEnabledToolNames() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetToolNamesWithExtendedHelp returns a sorted list of tool names that provide extended help
func GetToolNamesWithExtendedHelp() []string {
	mu.RLock()
	defer mu.RUnlock()

	var names []string
	for name, tool := range toolRegistry {
		if _, ok := tool.(tools.ExtendedHelpProvider); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
