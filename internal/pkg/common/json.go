package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體，不允許物件後面還有資料
func ParseJSON(data string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// ExtractJSONObject 從 AI 回覆中取出第一個完整的 JSON 物件。
// 第二個回傳值為 false 表示找不到 '{' 或物件未閉合。
func ExtractJSONObject(text string) (string, bool) {
	obj, _, ok := scanJSONObject(text, 0)
	return obj, ok
}

// ExtractJSONObjects 依序取出所有頂層的完整 JSON 物件，
// 每個物件結束後從下一個 '{' 繼續掃描
func ExtractJSONObjects(text string) []string {
	var objects []string
	for from := 0; from < len(text); {
		obj, end, ok := scanJSONObject(text, from)
		if !ok {
			break
		}
		objects = append(objects, obj)
		from = end
	}
	return objects
}

// scanJSONObject 從 from 之後的第一個 '{' 開始，追蹤大括號深度並略過字串內容，
// 字串中的 { } 不影響配對。返回物件與其結束位置
func scanJSONObject(text string, from int) (string, int, bool) {
	idx := strings.IndexByte(text[from:], '{')
	if idx < 0 {
		return "", 0, false
	}
	start := from + idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}
