package recipe

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"

	"recipe-sheet/internal/core/ai/provider"
	"recipe-sheet/internal/core/sheet"
	"recipe-sheet/internal/pkg/common"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []*provider.Request
	resp     *provider.Response
	err      error
}

func textResponse(text string) *provider.Response {
	return &provider.Response{
		ID:         "msg_test",
		Content:    []provider.ContentBlock{{Type: provider.BlockTypeText, Text: text}},
		StopReason: "end_turn",
	}
}

func (p *fakeProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.resp, p.err
}

func (p *fakeProvider) GetModel() string { return "test-model" }
func (p *fakeProvider) Close() error     { return nil }

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type fakeFetcher struct {
	body  string
	err   error
	links []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, link string) (string, error) {
	f.links = append(f.links, link)
	return f.body, f.err
}

type fakeExtractor struct {
	text  string
	err   error
	input [][]byte
}

func (e *fakeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	e.input = append(e.input, data)
	return e.text, e.err
}

type fakeStructurer struct {
	recipe  *common.StructuredRecipe
	err     error
	content []string
}

func (s *fakeStructurer) Structure(ctx context.Context, content string) (*common.StructuredRecipe, error) {
	s.content = append(s.content, content)
	return s.recipe, s.err
}

type fakeFiller struct {
	file *sheet.GeneratedFile
	err  error
}

func (f *fakeFiller) Fill(ctx context.Context, recipe *common.StructuredRecipe) (*sheet.GeneratedFile, error) {
	return f.file, f.err
}

type fakeUploads struct {
	files   map[string][]byte
	removed []string
}

func (u *fakeUploads) Read(path string) ([]byte, error) {
	data, ok := u.files[path]
	if !ok {
		return nil, common.ErrFileSystem.Wrapf(nil, "missing %s", path)
	}
	return data, nil
}

func (u *fakeUploads) Remove(path string) {
	u.removed = append(u.removed, path)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}
