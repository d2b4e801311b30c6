package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Sections(t *testing.T) {
	schema := mustSchema(t, sectionsConfig)

	tests := []struct {
		name    string
		answers Answers
		failing []string
	}{
		{name: "empty", answers: Empty(schema), failing: []string{"customer", "pains"}},
		{name: "blank text", answers: Answers{"customer": TextValue("   "), "pains": ItemsValue("x")}, failing: []string{"customer"}},
		{name: "all blank items", answers: Answers{"customer": TextValue("a"), "pains": ItemsValue("", "  ")}, failing: []string{"pains"}},
		{name: "wrong kind", answers: Answers{"customer": ItemsValue("a"), "pains": TextValue("x")}, failing: []string{"customer", "pains"}},
		{name: "one non-blank each", answers: Answers{"customer": TextValue("a"), "pains": ItemsValue("", "x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range Validate(schema, tt.answers) {
				got = append(got, e.FieldID)
			}
			assert.Equal(t, tt.failing, got)
		})
	}
}

func TestValidate_QuadrantsNeedEveryCell(t *testing.T) {
	schema := mustSchema(t, quadrantsConfig)
	answers := Answers{
		"q1": ItemsValue("fast"),
		"q2": ItemsValue("small team"),
		"q3": ItemsValue(""),
		"q4": ItemsValue("incumbents"),
	}
	errs := Validate(schema, answers)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "q3", errs[0].FieldID)
	}

	answers["q3"] = ItemsValue("new regulation")
	assert.Empty(t, Validate(schema, answers))
}

func TestValidate_StepsMinItems(t *testing.T) {
	schema := mustSchema(t, stepsConfig)
	entry := map[string]string{"hypothesis": "h", "metric": ""}

	answers := Answers{
		"assumptions": ItemsValue("a", "b", ""),
		"experiments": EntriesValue(entry),
	}
	errs := Validate(schema, answers)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "assumptions", errs[0].FieldID)
		assert.Contains(t, errs[0].Message, "at least 3")
	}

	answers["assumptions"] = ItemsValue("a", "b", "c")
	assert.Empty(t, Validate(schema, answers))

	answers["experiments"] = EntriesValue(map[string]string{"hypothesis": " ", "metric": ""})
	assert.Len(t, Validate(schema, answers), 1)
}
