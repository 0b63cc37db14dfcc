package naoagent

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/warehouse"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/afero"
	jsonschema "github.com/swaggest/jsonschema-go"
)

const (
	mainPromptTemplate = `You are nao, an analytics agent. You answer questions about the user's data by exploring the project context, querying the data warehouses and drawing charts.

IMPORTANT: Never invent numbers. Every figure you report must come from an execute_sql result in this conversation.
IMPORTANT: Only read queries are allowed. Never try to modify data.`

	workflowSection = `# Workflow
1. Find the relevant tables. Synced schemas live in the context folder under databases/type=<driver>/database=<warehouse>/schema=<schema>/table=<table>/, each with a columns.md and a preview.md. Use search and grep to find them and read to open them.
2. Write a SQL query with execute_sql. Prefer aggregating in SQL over fetching raw rows.
3. When the result is a trend, a comparison or a breakdown, call display_chart with the id returned by execute_sql. Use only column names present in that result.
4. Answer in a few sentences. Do not repeat the full result table when a chart shows it.`

	chartSection = `# Charts
- bar: comparisons across categories. line: trends over time. pie: shares of a whole, one series only.
- Set x_axis_type to "date" only when the x values are ISO dates, "number" for numeric axes and "category" otherwise.
- A title says what is shown, not the chart type.`

	toneSection = `# Tone and style
Be concise and direct. Use GitHub-flavored markdown. Mention the assumptions you made (date ranges, filters, definitions) in one line.`
)

// PromptData is the run-specific part of the system prompt.
type PromptData struct {
	ProjectName string
	Warehouses  []WarehouseInfo
	// ContextFs is listed at its top level so the model knows what is there.
	ContextFs afero.Fs
	Now       time.Time
}

// WarehouseInfo names a warehouse the agent can query.
type WarehouseInfo struct {
	Name   string
	Driver string
}

func getEnvironmentInfo(data PromptData) string {
	now := data.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString("Here is useful information about the environment you are running in:\n<env>\n")
	if data.ProjectName != "" {
		fmt.Fprintf(&b, "Project: %s\n", data.ProjectName)
	}
	fmt.Fprintf(&b, "Platform: %s\n", runtime.GOOS)
	fmt.Fprintf(&b, "OS Version: %s\n", getOSVersion())
	fmt.Fprintf(&b, "Today's date: %s\n", now.Format("2006-01-02"))
	b.WriteString("</env>")
	return b.String()
}

func getOSVersion() string {
	info, err := host.Info()
	if err == nil {
		if info.PlatformVersion != "" {
			return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		}
		return info.Platform
	}
	return runtime.GOOS
}

func formatWarehouses(ws []WarehouseInfo) string {
	if len(ws) == 0 {
		return "# Warehouses\nNo warehouse is configured. You cannot run SQL; say so if the question needs data."
	}
	lines := []string{"# Warehouses", "Pass the name as the warehouse argument of execute_sql. The first one is the default."}
	for _, w := range ws {
		lines = append(lines, fmt.Sprintf("- %s (%s)", w.Name, w.Driver))
	}
	return strings.Join(lines, "\n")
}

func formatContextFolder(fs afero.Fs) string {
	if fs == nil {
		return ""
	}
	infos, err := afero.ReadDir(fs, "/")
	if err != nil || len(infos) == 0 {
		return "# Context folder\nThe context folder is empty."
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return "# Context folder\nTop-level entries: " + strings.Join(names, ", ")
}

// formatSchemaForPrompt formats a JSON schema for display in the prompt
func formatSchemaForPrompt(schema *jsonschema.Schema, indentLevel int) string {
	if schema == nil {
		return "unknown"
	}

	indent := strings.Repeat("  ", indentLevel)
	parts := []string{}

	if schema.Description != nil && *schema.Description != "" {
		parts = append(parts, fmt.Sprintf("%s# %s", indent, *schema.Description))
	}

	typeLine := schemaTypeName(schema) + enumSuffix(schema.Enum)
	if schema.Items == nil && len(schema.Properties) > 0 && len(schema.Required) > 0 {
		typeLine += fmt.Sprintf(" (required: %s)", strings.Join(schema.Required, ", "))
	}
	parts = append(parts, indent+typeLine)

	propNames := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)
	for _, name := range propNames {
		prop := schema.Properties[name].TypeObject
		if prop == nil {
			continue
		}
		line := fmt.Sprintf("%s  %s: %s%s", indent, name, schemaTypeName(prop), enumSuffix(prop.Enum))
		if prop.Description != nil && *prop.Description != "" {
			line += " # " + *prop.Description
		}
		parts = append(parts, line)
	}

	if schema.Items != nil && schema.Items.SchemaOrBool != nil && schema.Items.SchemaOrBool.TypeObject != nil {
		item := formatSchemaForPrompt(schema.Items.SchemaOrBool.TypeObject, indentLevel+1)
		parts = append(parts, fmt.Sprintf("%s  items: %s", indent, strings.TrimSpace(item)))
	}

	return strings.Join(parts, "\n")
}

func schemaTypeName(schema *jsonschema.Schema) string {
	if schema.Type != nil {
		if schema.Type.SimpleTypes != nil {
			return string(*schema.Type.SimpleTypes)
		}
		if len(schema.Type.SliceOfSimpleTypeValues) > 0 {
			return string(schema.Type.SliceOfSimpleTypeValues[0])
		}
	}
	return "object"
}

func enumSuffix(values []interface{}) string {
	if len(values) == 0 {
		return ""
	}
	strs := make([]string, 0, len(values))
	for _, v := range values {
		strs = append(strs, fmt.Sprintf(`"%v"`, v))
	}
	return fmt.Sprintf(" (enum: %s)", strings.Join(strs, " | "))
}

func formatToolsForPrompt(toolbox *agent.DefaultToolbox) string {
	if toolbox == nil || len(toolbox.Tools()) == 0 {
		return "No tools available."
	}

	toolStrings := []string{}
	for _, tool := range toolbox.Tools() {
		parts := []string{
			fmt.Sprintf("Tool: %s", tool.GetName()),
			fmt.Sprintf("Description: %s", tool.GetDescription()),
			"Input Schema:",
		}
		if tool.GetParameters() != nil {
			parts = append(parts, formatSchemaForPrompt(tool.GetParameters(), 1))
		} else {
			parts = append(parts, "  # No schema defined")
		}
		toolStrings = append(toolStrings, strings.Join(parts, "\n"))
	}

	return fmt.Sprintf("You have access to the following tools:\n\n%s", strings.Join(toolStrings, "\n\n---\n\n"))
}

// GenerateSystemPrompt assembles all sections into the final system prompt
func GenerateSystemPrompt(data PromptData, toolbox *agent.DefaultToolbox) string {
	sections := []string{
		mainPromptTemplate,
		workflowSection,
		chartSection,
		toneSection,
		formatWarehouses(data.Warehouses),
		formatContextFolder(data.ContextFs),
		getEnvironmentInfo(data),
		formatToolsForPrompt(toolbox),
	}

	nonEmpty := sections[:0]
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

// WarehouseInfos describes the warehouses of a set for the prompt.
func WarehouseInfos(set *warehouse.Set) []WarehouseInfo {
	var out []WarehouseInfo
	for _, w := range set.All() {
		out = append(out, WarehouseInfo{Name: w.Name, Driver: w.Driver})
	}
	return out
}
