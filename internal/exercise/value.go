package exercise

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindItems
	KindEntries
)

// Value 单个字段的作答：字符串、字符串序列或对象序列
type Value struct {
	Kind    ValueKind
	Text    string
	Items   []string
	Entries []map[string]string
}

func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

func ItemsValue(items ...string) Value {
	return Value{Kind: KindItems, Items: append([]string{}, items...)}
}

func EntriesValue(entries ...map[string]string) Value {
	out := make([]map[string]string, len(entries))
	for i, e := range entries {
		out[i] = copyEntry(e)
	}
	return Value{Kind: KindEntries, Entries: out}
}

func (v Value) Len() int {
	switch v.Kind {
	case KindItems:
		return len(v.Items)
	case KindEntries:
		return len(v.Entries)
	}
	return 0
}

func (v Value) clone() Value {
	out := Value{Kind: v.Kind, Text: v.Text}
	if v.Items != nil {
		out.Items = append([]string{}, v.Items...)
	}
	if v.Entries != nil {
		out.Entries = make([]map[string]string, len(v.Entries))
		for i, e := range v.Entries {
			out.Entries[i] = copyEntry(e)
		}
	}
	return out
}

// NonBlankCount 非空白条目数；对象条目只要有一个子字段非空白即算
func (v Value) NonBlankCount() int {
	n := 0
	switch v.Kind {
	case KindText:
		if strings.TrimSpace(v.Text) != "" {
			n = 1
		}
	case KindItems:
		for _, it := range v.Items {
			if strings.TrimSpace(it) != "" {
				n++
			}
		}
	case KindEntries:
		for _, e := range v.Entries {
			if !entryBlank(e) {
				n++
			}
		}
	}
	return n
}

func entryBlank(e map[string]string) bool {
	for _, s := range e {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func copyEntry(e map[string]string) map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindItems:
		if v.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Items)
	case KindEntries:
		if v.Entries == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Entries)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		v.Kind = KindText
		return json.Unmarshal(data, &v.Text)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if len(raw) == 0 {
			v.Kind = KindItems
			v.Items = []string{}
			return nil
		}
		if first := bytes.TrimSpace(raw[0]); len(first) > 0 && first[0] == '{' {
			v.Kind = KindEntries
			return json.Unmarshal(data, &v.Entries)
		}
		v.Kind = KindItems
		v.Items = make([]string, len(raw))
		for i, r := range raw {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				// 非字符串条目（数字等）按原文保留
				s = string(r)
			}
			v.Items[i] = s
		}
		return nil
	}
	return fmt.Errorf("unsupported answer value %s", string(data))
}

// Answers 字段 ID 到作答值的映射，即 submissions.response_data
type Answers map[string]Value

func ParseAnswers(raw []byte) (Answers, error) {
	a := Answers{}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return a, nil
}

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v.clone()
	}
	return out
}

// Empty 模板的初始作答
func Empty(s Schema) Answers {
	a := Answers{}
	for _, f := range s.Fields() {
		switch {
		case f.Kind == InputText:
			a[f.ID] = TextValue("")
		case f.HasSubFields():
			a[f.ID] = EntriesValue()
		case f.Kind == InputList:
			a[f.ID] = ItemsValue()
		default:
			a[f.ID] = ItemsValue("")
		}
	}
	return a
}
