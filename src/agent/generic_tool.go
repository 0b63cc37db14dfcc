package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/swaggest/jsonschema-go"
)

// GenericToolHandler is a type-safe handler function
type GenericToolHandler[TInput any, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

// GenericTool adapts a typed handler to the Tool interface. The parameter
// schema is reflected from TInput and required fields are checked before the
// handler runs.
type GenericTool[TInput any, TOutput any] struct {
	Type        string
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput, TOutput]
}

var _ Tool = (*GenericTool[struct{}, struct{}])(nil)

func (gt *GenericTool[TInput, TOutput]) GetType() string        { return gt.Type }
func (gt *GenericTool[TInput, TOutput]) GetName() string        { return gt.Name }
func (gt *GenericTool[TInput, TOutput]) GetDescription() string { return gt.Description }

// GetParameters returns the JSON schema for the tool's parameters
func (gt *GenericTool[TInput, TOutput]) GetParameters() *jsonschema.Schema {
	return gt.Schema
}

// Execute decodes the call arguments, runs the handler and encodes its
// output. Decode, validation and handler failures come back as error
// responses so the model can correct itself.
func (gt *GenericTool[TInput, TOutput]) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	var input TInput
	args := call.Function.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return ErrorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
	}

	if err := gt.validateRequired(input); err != nil {
		return ErrorResponse(fmt.Sprintf("validation failed: %v", err)), nil
	}

	output, err := gt.Handler(ctx, input)
	if err != nil {
		return ErrorResponse(err.Error()), nil
	}

	content, err := json.Marshal(output)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return &aisdk.ToolResponse{
		Type:    "success",
		Content: content,
	}, nil
}

// ErrorResponse builds a failed tool response carrying msg.
func ErrorResponse(msg string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{
		Type:    "error",
		Content: []byte(msg),
		IsError: true,
	}
}

// validateRequired checks that required fields are not empty
func (gt *GenericTool[TInput, TOutput]) validateRequired(input TInput) error {
	if gt.Schema == nil || len(gt.Schema.Required) == 0 {
		return nil
	}

	val := reflect.ValueOf(input)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return fmt.Errorf("input is missing")
		}
		val = val.Elem()
	}
	typ := val.Type()

	for _, required := range gt.Schema.Required {
		found := false
		for i := 0; i < typ.NumField(); i++ {
			name := strings.Split(typ.Field(i).Tag.Get("json"), ",")[0]
			if name != required {
				continue
			}
			found = true
			if val.Field(i).IsZero() {
				return fmt.Errorf("required field '%s' is missing", required)
			}
			break
		}
		if !found {
			return fmt.Errorf("required field '%s' not found in struct", required)
		}
	}
	return nil
}

// NewGenericTool creates a tool from a typed handler. Both TInput and TOutput
// must be structs.
func NewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) (*GenericTool[TInput, TOutput], error) {
	var input TInput
	if err := requireStruct("input", reflect.TypeOf(input)); err != nil {
		return nil, err
	}
	var output TOutput
	if err := requireStruct("output", reflect.TypeOf(output)); err != nil {
		return nil, err
	}

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &GenericTool[TInput, TOutput]{
		Type:        "function",
		Name:        name,
		Description: description,
		Schema:      &schema,
		Handler:     handler,
	}, nil
}

// MustNewGenericTool is NewGenericTool for package-level tool definitions.
func MustNewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) *GenericTool[TInput, TOutput] {
	tool, err := NewGenericTool(name, description, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to create generic tool: %v", err))
	}
	return tool
}

func requireStruct(what string, t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("tool %s type must be a struct, got interface", what)
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("tool %s type must be a struct, got %s", what, t.Kind())
	}
	return nil
}
