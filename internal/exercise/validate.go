package exercise

import "fmt"

type FieldError struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldID, e.Message)
}

// Validate 提交前校验：
//   - 文本字段必须有非空白内容
//   - 多行/列表字段至少一条非空白条目
//   - 声明了 minItems 的字段至少 minItems 条非空白条目
//
// 可选字段（followUp）不校验
func Validate(schema Schema, answers Answers) []FieldError {
	var errs []FieldError
	for _, spec := range schema.Fields() {
		if spec.Optional {
			continue
		}
		v := answers[spec.ID]

		if spec.Kind == InputText {
			if v.Kind != KindText || v.NonBlankCount() == 0 {
				errs = append(errs, FieldError{FieldID: spec.ID, Label: spec.Label, Message: "this field is required"})
			}
			continue
		}

		if v.Kind != KindItems && v.Kind != KindEntries {
			errs = append(errs, FieldError{FieldID: spec.ID, Label: spec.Label, Message: "at least one entry is required"})
			continue
		}

		need := spec.MinItems
		if need < 1 {
			need = 1
		}
		if got := v.NonBlankCount(); got < need {
			msg := "at least one entry is required"
			if need > 1 {
				msg = fmt.Sprintf("at least %d non-blank entries are required, got %d", need, got)
			}
			errs = append(errs, FieldError{FieldID: spec.ID, Label: spec.Label, Message: msg})
		}
	}
	return errs
}
