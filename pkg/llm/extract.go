package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// 模型常把 JSON 包在说明文字或 ```json 代码块里，取第一个 { 到最后一个 } 之间的内容
var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractJSON 从模型文本中截取 JSON 对象
func ExtractJSON(text string) (json.RawMessage, error) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, &ErrInvalidResponse{Content: text, Err: fmt.Errorf("no JSON object in response")}
	}
	return json.RawMessage(match), nil
}

// Decode 截取 JSON、按 schema 校验后解码到 out
func Decode(text string, schema *Schema, out any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := validateResponse(schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrInvalidResponse{Content: text, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
