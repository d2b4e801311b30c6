package exercise

import (
	"errors"
	"fmt"
)

var (
	ErrReadOnly      = errors.New("form is read-only")
	ErrUnknownField  = errors.New("unknown field")
	ErrWrongKind     = errors.New("operation not supported for field kind")
	ErrIndexRange    = errors.New("item index out of range")
	ErrMaxItems      = errors.New("field already has the maximum number of items")
	ErrLastItem      = errors.New("cannot remove the only item")
	ErrUnknownSubKey = errors.New("unknown entry field")
)

// Form 作答表单状态。所有修改都是整字段替换
type Form struct {
	schema   Schema
	values   Answers
	readOnly bool
}

// NewForm initial 为空时使用模板初始值
func NewForm(schema Schema, initial Answers, readOnly bool) *Form {
	values := Empty(schema)
	for k, v := range initial {
		values[k] = v.clone()
	}
	return &Form{schema: schema, values: values, readOnly: readOnly}
}

func (f *Form) Schema() Schema  { return f.schema }
func (f *Form) ReadOnly() bool  { return f.readOnly }
func (f *Form) Values() Answers { return f.values.Clone() }

func (f *Form) Get(id string) Value {
	return f.values[id].clone()
}

func (f *Form) field(id string) (FieldSpec, error) {
	if f.readOnly {
		return FieldSpec{}, ErrReadOnly
	}
	spec, ok := Lookup(f.schema, id)
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return spec, nil
}

// current 多行字段空值按一条空输入显示
func (f *Form) current(spec FieldSpec) Value {
	v := f.values[spec.ID].clone()
	if spec.HasSubFields() {
		if v.Kind != KindEntries {
			v = EntriesValue()
		}
		return v
	}
	if v.Kind != KindItems {
		v = ItemsValue()
	}
	if spec.Kind == InputMultiline && len(v.Items) == 0 {
		v.Items = []string{""}
	}
	return v
}

func (f *Form) SetText(id, text string) error {
	spec, err := f.field(id)
	if err != nil {
		return err
	}
	if spec.Kind != InputText {
		return fmt.Errorf("%w: set text on %s field %q", ErrWrongKind, spec.Kind, id)
	}
	f.values[id] = TextValue(text)
	return nil
}

// Append 追加空条目；声明了子字段的列表追加空对象
func (f *Form) Append(id string) error {
	spec, err := f.field(id)
	if err != nil {
		return err
	}
	if spec.Kind == InputText {
		return fmt.Errorf("%w: append on text field %q", ErrWrongKind, id)
	}

	v := f.current(spec)
	if limit := spec.ItemLimit(); limit > 0 && v.Len() >= limit {
		return fmt.Errorf("%w (%d)", ErrMaxItems, limit)
	}

	if spec.HasSubFields() {
		entry := make(map[string]string, len(spec.SubFields))
		for _, k := range spec.SubFields {
			entry[k] = ""
		}
		v.Entries = append(v.Entries, entry)
	} else {
		v.Items = append(v.Items, "")
	}
	f.values[id] = v
	return nil
}

func (f *Form) UpdateItem(id string, index int, text string) error {
	spec, err := f.field(id)
	if err != nil {
		return err
	}
	if spec.Kind == InputText || spec.HasSubFields() {
		return fmt.Errorf("%w: update item on field %q", ErrWrongKind, id)
	}

	v := f.current(spec)
	if index < 0 || index >= len(v.Items) {
		return fmt.Errorf("%w: %d", ErrIndexRange, index)
	}
	v.Items[index] = text
	f.values[id] = v
	return nil
}

func (f *Form) UpdateEntry(id string, index int, key, text string) error {
	spec, err := f.field(id)
	if err != nil {
		return err
	}
	if !spec.HasSubFields() {
		return fmt.Errorf("%w: update entry on field %q", ErrWrongKind, id)
	}
	known := false
	for _, k := range spec.SubFields {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownSubKey, key)
	}

	v := f.current(spec)
	if index < 0 || index >= len(v.Entries) {
		return fmt.Errorf("%w: %d", ErrIndexRange, index)
	}
	v.Entries[index][key] = text
	f.values[id] = v
	return nil
}

// Remove 多行字段至少保留一条；列表字段可删空
func (f *Form) Remove(id string, index int) error {
	spec, err := f.field(id)
	if err != nil {
		return err
	}
	if spec.Kind == InputText {
		return fmt.Errorf("%w: remove on text field %q", ErrWrongKind, id)
	}

	v := f.current(spec)
	if index < 0 || index >= v.Len() {
		return fmt.Errorf("%w: %d", ErrIndexRange, index)
	}
	if spec.Kind == InputMultiline && v.Len() <= 1 {
		return ErrLastItem
	}

	if spec.HasSubFields() {
		v.Entries = append(v.Entries[:index], v.Entries[index+1:]...)
	} else {
		v.Items = append(v.Items[:index], v.Items[index+1:]...)
	}
	f.values[id] = v
	return nil
}

// Op 一次表单修改，供 HTTP 层按序回放
type Op struct {
	Type  string `json:"type" binding:"required,oneof=set append update update_entry remove"`
	Field string `json:"field" binding:"required"`
	Index int    `json:"index"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

func (f *Form) Apply(op Op) error {
	switch op.Type {
	case "set":
		return f.SetText(op.Field, op.Value)
	case "append":
		return f.Append(op.Field)
	case "update":
		return f.UpdateItem(op.Field, op.Index, op.Value)
	case "update_entry":
		return f.UpdateEntry(op.Field, op.Index, op.Key, op.Value)
	case "remove":
		return f.Remove(op.Field, op.Index)
	}
	return fmt.Errorf("unknown op %q", op.Type)
}
