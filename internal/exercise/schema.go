// Package exercise 练习模板引擎：解析三种模板形态（sections / quadrants / steps），
// 维护作答表单状态，生成渲染视图并做提交前校验。
package exercise

import (
	"encoding/json"
	"errors"
	"fmt"
)

type InputType string

const (
	InputText      InputType = "text"
	InputMultiline InputType = "multiline"
	InputList      InputType = "list"
)

type Shape string

const (
	ShapeSections  Shape = "sections"
	ShapeQuadrants Shape = "quadrants"
	ShapeSteps     Shape = "steps"
)

// DefaultMaxItems 未声明 maxItems 时多行字段的上限
const DefaultMaxItems = 10

// FollowUpID 追问字段在作答数据中的键
const FollowUpID = "followUp"

var (
	ErrUnknownShape   = errors.New("template config has none of sections, quadrants or steps")
	ErrAmbiguousShape = errors.New("template config declares more than one shape")
	ErrEmptyTemplate  = errors.New("template declares no fields")
)

type Section struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	InputType   InputType `json:"inputType"`
	MaxItems    int       `json:"maxItems,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Quadrant 2x2 矩阵中的一格，始终是多行输入
type Quadrant struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	MaxItems    int    `json:"maxItems,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

type Step struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	InputType   InputType `json:"inputType"`
	MinItems    int       `json:"minItems,omitempty"`
	MaxItems    int       `json:"maxItems,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	// Fields 非空时每个条目是一个对象，键为这些子字段
	Fields []string `json:"fields,omitempty"`
}

// FieldSpec 三种形态统一后的字段描述
type FieldSpec struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Kind        InputType `json:"kind"`
	MinItems    int       `json:"minItems,omitempty"`
	MaxItems    int       `json:"maxItems,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	SubFields   []string  `json:"subFields,omitempty"`
	Optional    bool      `json:"optional,omitempty"`
}

func (f FieldSpec) HasSubFields() bool {
	return f.Kind == InputList && len(f.SubFields) > 0
}

// ItemLimit 条目上限，0 表示不限
func (f FieldSpec) ItemLimit() int {
	switch f.Kind {
	case InputMultiline:
		if f.MaxItems > 0 {
			return f.MaxItems
		}
		return DefaultMaxItems
	case InputList:
		return f.MaxItems
	}
	return 0
}

// Schema 模板形态的标签联合，只有本包内的三种实现
type Schema interface {
	Shape() Shape
	// Fields 按声明顺序返回字段
	Fields() []FieldSpec
	isSchema()
}

type SectionsSchema struct {
	Sections []Section `json:"sections"`
	FollowUp *Section  `json:"followUp,omitempty"`
}

type QuadrantsSchema struct {
	Quadrants []Quadrant `json:"quadrants"`
	FollowUp  *Section   `json:"followUp,omitempty"`
}

type StepsSchema struct {
	Steps []Step `json:"steps"`
}

func (SectionsSchema) Shape() Shape  { return ShapeSections }
func (QuadrantsSchema) Shape() Shape { return ShapeQuadrants }
func (StepsSchema) Shape() Shape     { return ShapeSteps }

func (SectionsSchema) isSchema()  {}
func (QuadrantsSchema) isSchema() {}
func (StepsSchema) isSchema()     {}

func (s SectionsSchema) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.Sections)+1)
	for _, sec := range s.Sections {
		out = append(out, sec.spec())
	}
	return appendFollowUp(out, s.FollowUp)
}

func (s QuadrantsSchema) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.Quadrants)+1)
	for _, q := range s.Quadrants {
		out = append(out, FieldSpec{
			ID:          q.ID,
			Label:       q.Label,
			Description: q.Description,
			Kind:        InputMultiline,
			MaxItems:    q.MaxItems,
			Placeholder: q.Placeholder,
			Prompt:      q.Prompt,
		})
	}
	return appendFollowUp(out, s.FollowUp)
}

func (s StepsSchema) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.Steps))
	for _, st := range s.Steps {
		kind := st.InputType
		if kind != InputList {
			kind = InputMultiline
		}
		out = append(out, FieldSpec{
			ID:          st.ID,
			Label:       st.Label,
			Description: st.Description,
			Kind:        kind,
			MinItems:    st.MinItems,
			MaxItems:    st.MaxItems,
			Placeholder: st.Placeholder,
			SubFields:   st.Fields,
		})
	}
	return out
}

func (s Section) spec() FieldSpec {
	kind := s.InputType
	switch kind {
	case InputText, InputMultiline, InputList:
	default:
		kind = InputText
	}
	return FieldSpec{
		ID:          s.ID,
		Label:       s.Label,
		Description: s.Description,
		Kind:        kind,
		MaxItems:    s.MaxItems,
		Placeholder: s.Placeholder,
	}
}

// 追问字段固定为多行、可选
func appendFollowUp(out []FieldSpec, f *Section) []FieldSpec {
	if f == nil {
		return out
	}
	spec := f.spec()
	spec.ID = FollowUpID
	spec.Kind = InputMultiline
	spec.Optional = true
	return append(out, spec)
}

// ParseSchema 按配置中出现的形态键解析，必须恰好出现一个
func ParseSchema(raw []byte) (Schema, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parse template config: %w", err)
	}

	var found []Shape
	for _, shape := range []Shape{ShapeSections, ShapeQuadrants, ShapeSteps} {
		if v, ok := probe[string(shape)]; ok && string(v) != "null" {
			found = append(found, shape)
		}
	}
	switch len(found) {
	case 0:
		return nil, ErrUnknownShape
	case 1:
	default:
		return nil, fmt.Errorf("%w: %v", ErrAmbiguousShape, found)
	}

	var schema Schema
	switch found[0] {
	case ShapeSections:
		var s SectionsSchema
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("parse sections: %w", err)
		}
		schema = s
	case ShapeQuadrants:
		var s QuadrantsSchema
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("parse quadrants: %w", err)
		}
		schema = s
	case ShapeSteps:
		var s StepsSchema
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("parse steps: %w", err)
		}
		schema = s
	}

	fields := schema.Fields()
	if len(fields) == 0 {
		return nil, ErrEmptyTemplate
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.ID == "" {
			return nil, fmt.Errorf("field %q has no id", f.Label)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("duplicate field id %q", f.ID)
		}
		seen[f.ID] = true
	}
	return schema, nil
}

// Lookup 按 ID 查找字段
func Lookup(s Schema, id string) (FieldSpec, bool) {
	for _, f := range s.Fields() {
		if f.ID == id {
			return f, true
		}
	}
	return FieldSpec{}, false
}
