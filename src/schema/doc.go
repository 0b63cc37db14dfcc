// Package schema holds the input and output contracts of the agent tools.
//
// The same types are used by the tools themselves (to reflect their JSON
// schema and decode calls), by the chat views that render tool parts, and by
// the chart binder that cross-references display_chart calls with
// execute_sql results.
//
// Field tags follow the conventions of github.com/swaggest/jsonschema-go:
//
//	type GrepInput struct {
//		Pattern string `json:"pattern" required:"true" description:"Regex to search for"`
//	}
package schema
