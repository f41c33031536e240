package sheet

import "regexp"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName 由食譜名稱產生技術表檔名，非英數字元一律替換為底線
func FileName(recipeName string) string {
	return "FT_" + unsafeFileChars.ReplaceAllString(recipeName, "_") + ".xlsx"
}
