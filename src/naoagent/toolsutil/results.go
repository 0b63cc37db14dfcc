package toolsutil

import (
	"fmt"
	"sync"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/schema"
)

// QueryResults holds the execute_sql outputs visible to a chat: those
// already in its history and those produced by the current run. It hands out
// query ids that stay unique across the whole chat.
type QueryResults struct {
	mu    sync.Mutex
	byID  map[string]schema.ExecuteSQLOutput
	count int
}

// NewQueryResults seeds the store from a chat history. When two outputs
// share an id the first one wins, matching how charts are bound.
func NewQueryResults(history []aisdk.UIMessage) *QueryResults {
	r := &QueryResults{byID: make(map[string]schema.ExecuteSQLOutput)}
	sqlType := aisdk.ToolPartType(schema.ToolExecuteSQL)
	for _, msg := range history {
		for _, part := range msg.Parts {
			if part.Type != sqlType {
				continue
			}
			r.count++
			var out schema.ExecuteSQLOutput
			if part.ToolState() != aisdk.ToolOutputAvailable || !part.DecodeOutput(&out) || out.ID == "" {
				continue
			}
			if _, ok := r.byID[out.ID]; !ok {
				r.byID[out.ID] = out
			}
		}
	}
	return r
}

// NextID reserves the next query id.
func (r *QueryResults) NextID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		r.count++
		id := fmt.Sprintf("query_%d", r.count)
		if _, taken := r.byID[id]; !taken {
			return id
		}
	}
}

// Put records an output under its id.
func (r *QueryResults) Put(out schema.ExecuteSQLOutput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[out.ID]; !ok {
		r.byID[out.ID] = out
	}
}

// Get returns the output recorded under id.
func (r *QueryResults) Get(id string) (schema.ExecuteSQLOutput, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.byID[id]
	return out, ok
}
