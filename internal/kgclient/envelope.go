package kgclient

import (
	"fmt"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/go-viper/mapstructure/v2"
)

// ProblemNodeType is the node type whose writes use ProblemEnvelope.
const ProblemNodeType = "Problem"

// ProblemEnvelope is the backend resource shape for Problem nodes. Attributes
// holds every property not lifted into a named field. Lifted values keep the
// type they had in the node properties.
type ProblemEnvelope struct {
	ProblemID   any            `json:"problemId,omitempty"`
	ProblemType any            `json:"problemType,omitempty"`
	Description any            `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes"`
}

// problem_id is left in the attributes on create; the backend assigns it.
type problemCreateFields struct {
	ProblemType any            `mapstructure:"problem_type"`
	Description any            `mapstructure:"description"`
	Rest        map[string]any `mapstructure:",remain"`
}

type problemUpdateFields struct {
	ProblemID   any            `mapstructure:"problem_id"`
	ProblemType any            `mapstructure:"problem_type"`
	Description any            `mapstructure:"description"`
	Rest        map[string]any `mapstructure:",remain"`
}

// NewProblemCreate repackages node properties for a Problem create. Keys are
// matched exactly, so "Description" stays an attribute.
func NewProblemCreate(props graph.Properties) (ProblemEnvelope, error) {
	var f problemCreateFields
	if err := decodeProperties(props, &f, false); err != nil {
		return ProblemEnvelope{}, err
	}
	return ProblemEnvelope{
		ProblemType: f.ProblemType,
		Description: f.Description,
		Attributes:  nonNil(f.Rest),
	}, nil
}

// NewProblemUpdate repackages node properties for a Problem update. The
// problem_id property becomes the envelope's problemId.
func NewProblemUpdate(props graph.Properties) (ProblemEnvelope, error) {
	var f problemUpdateFields
	if err := decodeProperties(props, &f, false); err != nil {
		return ProblemEnvelope{}, err
	}
	return ProblemEnvelope{
		ProblemID:   f.ProblemID,
		ProblemType: f.ProblemType,
		Description: f.Description,
		Attributes:  nonNil(f.Rest),
	}, nil
}

// StepInput is the backend resource shape for a flow step node.
type StepInput struct {
	ProblemID    string `json:"problemId" mapstructure:"problem_id" validate:"required"`
	StepID       string `json:"stepId" mapstructure:"step_id" validate:"required"`
	Operation    string `json:"operation" mapstructure:"operation"`
	SystemA      string `json:"systemA" mapstructure:"system_a"`
	TableName    string `json:"tableName" mapstructure:"table_name"`
	Field        string `json:"field" mapstructure:"field"`
	ConditionSQL string `json:"conditionSql" mapstructure:"condition_sql"`
	ReplyContent string `json:"replyContent" mapstructure:"reply_content"`
}

// StepFromProperties maps snake_case step node properties to a StepInput.
// Unknown properties are ignored.
func StepFromProperties(props graph.Properties) (StepInput, error) {
	var s StepInput
	if err := decodeProperties(props, &s, true); err != nil {
		return StepInput{}, err
	}
	return s, nil
}

// decodeProperties maps props onto out with case-sensitive key matching.
// weak allows scalar conversions such as a numeric step_id to a string.
func decodeProperties(props graph.Properties, out any, weak bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: weak,
		MatchName:        func(mapKey, fieldName string) bool { return mapKey == fieldName },
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(props)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
