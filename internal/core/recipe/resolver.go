package recipe

import (
	"context"

	"recipe-sheet/internal/pkg/common"

	"go.uber.org/zap"
)

// Resolver 將三種來源統一轉為食譜文字
type Resolver struct {
	fetcher   LinkFetcher
	extractor TextExtractor
	uploads   UploadReader
}

// NewResolver 創建來源解析器
func NewResolver(fetcher LinkFetcher, extractor TextExtractor, uploads UploadReader) *Resolver {
	return &Resolver{
		fetcher:   fetcher,
		extractor: extractor,
		uploads:   uploads,
	}
}

// Resolve 返回食譜原始內容；文字來源原樣返回
func (r *Resolver) Resolve(ctx context.Context, src Source) (string, error) {
	kind := src.Kind()
	common.LogDebug("Resolving recipe source", zap.String("kind", string(kind)))

	switch kind {
	case KindNone:
		return "", common.ErrNoInput
	case KindAmbiguous:
		return "", common.ErrAmbiguousInput
	case KindText:
		return src.Text, nil
	case KindLink:
		return r.fetcher.Fetch(ctx, src.Link)
	case KindImage:
		data, err := r.uploads.Read(src.Image.Path)
		if err != nil {
			return "", err
		}
		return r.extractor.ExtractText(ctx, data)
	}

	return "", common.ErrInvalidRequest
}
