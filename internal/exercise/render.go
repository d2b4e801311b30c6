package exercise

import "fmt"

type FieldView struct {
	FieldSpec
	Number    int    `json:"number"`
	Value     Value  `json:"value"`
	CanAdd    bool   `json:"canAdd"`
	CanRemove bool   `json:"canRemove"`
	Hint      string `json:"hint,omitempty"`
}

type View struct {
	Shape    Shape       `json:"shape"`
	ReadOnly bool        `json:"readOnly"`
	Fields   []FieldView `json:"fields"`
}

// Render 生成前端渲染所需的视图，只读模式下所有增删操作不可用
func Render(form *Form) View {
	schema := form.Schema()
	view := View{Shape: schema.Shape(), ReadOnly: form.ReadOnly()}

	for i, spec := range schema.Fields() {
		fv := FieldView{FieldSpec: spec, Number: i + 1}

		if spec.Kind == InputText {
			v := form.values[spec.ID]
			if v.Kind != KindText {
				v = TextValue("")
			}
			fv.Value = v
		} else {
			v := form.current(spec)
			fv.Value = v
			if !form.ReadOnly() {
				limit := spec.ItemLimit()
				fv.CanAdd = limit == 0 || v.Len() < limit
				if spec.Kind == InputMultiline {
					fv.CanRemove = v.Len() > 1
				} else {
					fv.CanRemove = v.Len() > 0
				}
			}
		}

		if spec.MinItems > 0 {
			fv.Hint = fmt.Sprintf("Minimum %d items required", spec.MinItems)
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}
