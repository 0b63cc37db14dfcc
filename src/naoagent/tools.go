// Package naoagent assembles the analytics agent: its tools over the project
// context folder and the configured warehouses, and its system prompt.
package naoagent

import (
	"log/slog"
	"time"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/tools/tool_displaychart"
	"github.com/elee1766/naochat/src/naoagent/tools/tool_executesql"
	"github.com/elee1766/naochat/src/naoagent/tools/tool_grep"
	"github.com/elee1766/naochat/src/naoagent/tools/tool_list"
	"github.com/elee1766/naochat/src/naoagent/tools/tool_read"
	"github.com/elee1766/naochat/src/naoagent/tools/tool_search"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/warehouse"
	"github.com/spf13/afero"
)

// ToolsConfig is what the toolbox of one run needs.
type ToolsConfig struct {
	// ContextFs is the project context folder. See ContextFs.
	ContextFs afero.Fs
	// Warehouses may be empty; execute_sql then reports that none is configured.
	Warehouses *warehouse.Set
	// Results carries execute_sql outputs from history and from this run.
	Results *toolsutil.QueryResults

	MaxRows      int
	QueryTimeout time.Duration
	// ToolTimeout bounds every tool call. Zero disables it.
	ToolTimeout time.Duration

	Logger *slog.Logger
}

// ContextFs returns a read-only filesystem rooted at dir.
func ContextFs(dir string) afero.Fs {
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewToolbox builds the toolbox for one agent run.
func NewToolbox(cfg ToolsConfig) (*agent.DefaultToolbox, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Results == nil {
		cfg.Results = toolsutil.NewQueryResults(nil)
	}
	if cfg.ContextFs == nil {
		cfg.ContextFs = afero.NewMemMapFs()
	}

	builders := []func() (agent.Tool, error){
		func() (agent.Tool, error) {
			return tool_executesql.Tool(cfg.Warehouses, cfg.Results, tool_executesql.Options{
				MaxRows: cfg.MaxRows,
				Timeout: cfg.QueryTimeout,
			})
		},
		func() (agent.Tool, error) { return tool_displaychart.Tool(cfg.Results) },
		func() (agent.Tool, error) { return tool_grep.Tool(cfg.ContextFs) },
		func() (agent.Tool, error) { return tool_read.Tool(cfg.ContextFs) },
		func() (agent.Tool, error) { return tool_list.Tool(cfg.ContextFs) },
		func() (agent.Tool, error) { return tool_search.Tool(cfg.ContextFs) },
	}

	toolbox := agent.NewToolbox[agent.Tool]()
	for _, build := range builders {
		tool, err := build()
		if err != nil {
			return nil, err
		}
		if err := toolbox.RegisterTool(tool); err != nil {
			return nil, err
		}
	}

	toolbox.RegisterMiddleware(agent.LoggingMiddleware(cfg.Logger.With("component", "tools")))
	if cfg.ToolTimeout > 0 {
		toolbox.RegisterMiddleware(agent.TimeoutMiddleware(cfg.ToolTimeout))
	}
	return toolbox, nil
}
