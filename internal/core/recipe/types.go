package recipe

import (
	"context"
	"strings"

	"recipe-sheet/internal/core/sheet"
	"recipe-sheet/internal/pkg/common"
)

// ImageUpload 已暫存的上傳圖片
type ImageUpload struct {
	Path        string
	FileName    string
	ContentType string
}

// Source 食譜來源，三者擇一
type Source struct {
	Text  string
	Link  string
	Image *ImageUpload
}

// Kind 來源類型
type Kind string

const (
	KindNone      Kind = "none"
	KindText      Kind = "texto"
	KindLink      Kind = "link"
	KindImage     Kind = "imagem"
	KindAmbiguous Kind = "ambiguous"
)

// Kind 判斷來源類型；空白文字與空白連結視為未提供
func (s Source) Kind() Kind {
	var kinds []Kind
	if strings.TrimSpace(s.Text) != "" {
		kinds = append(kinds, KindText)
	}
	if strings.TrimSpace(s.Link) != "" {
		kinds = append(kinds, KindLink)
	}
	if s.Image != nil && s.Image.Path != "" {
		kinds = append(kinds, KindImage)
	}

	switch len(kinds) {
	case 0:
		return KindNone
	case 1:
		return kinds[0]
	default:
		return KindAmbiguous
	}
}

// Result 一次處理的結果
type Result struct {
	Recipe *common.StructuredRecipe
	File   *sheet.GeneratedFile
	Kind   Kind
}

// LinkFetcher 抓取連結內容
type LinkFetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

// TextExtractor 從圖片抽取文字
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Structurer 把食譜文字轉為結構化資料
type Structurer interface {
	Structure(ctx context.Context, content string) (*common.StructuredRecipe, error)
}

// SheetFiller 把結構化資料填入技術表
type SheetFiller interface {
	Fill(ctx context.Context, recipe *common.StructuredRecipe) (*sheet.GeneratedFile, error)
}

// UploadReader 讀取與刪除暫存圖片
type UploadReader interface {
	Read(path string) ([]byte, error)
	Remove(path string)
}
