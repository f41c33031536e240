package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP

	"recipe-sheet/internal/pkg/common"
)

// mediaTypes AI 服務接受的格式
var mediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Encoded 已驗證並編碼的圖片
type Encoded struct {
	MediaType string
	Data      string // base64，不含 data: 前綴
	Width     int
	Height    int
}

// Processor 圖片處理器
type Processor struct {
	maxSizeBytes int64
}

// NewProcessor 創建圖片處理器
func NewProcessor(maxSizeBytes int64) *Processor {
	return &Processor{
		maxSizeBytes: maxSizeBytes,
	}
}

// Encode 檢查大小與格式，依實際內容判斷 media type 後編碼為 base64
func (p *Processor) Encode(data []byte) (*Encoded, error) {
	if len(data) == 0 {
		return nil, common.ErrInvalidImage.Wrapf(nil, "Imagem vazia")
	}
	if p.maxSizeBytes > 0 && int64(len(data)) > p.maxSizeBytes {
		return nil, common.ErrInvalidImage.Wrapf(nil, "Imagem excede o limite de %d bytes", p.maxSizeBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImage.Wrapf(err, "Formato de imagem não reconhecido")
	}

	mediaType, ok := mediaTypes[format]
	if !ok {
		return nil, common.ErrInvalidImage.Wrapf(fmt.Errorf("unsupported image format: %s", format), "Formato de imagem não suportado")
	}

	return &Encoded{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}
