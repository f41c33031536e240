package recipe

import (
	"bytes"
	"context"
	"testing"
	"time"

	"recipe-sheet/internal/core/sheet"
	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/infrastructure/storage"
	"recipe-sheet/internal/pkg/common"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestProcessTextEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetName("Sheet1", "Planilha1"))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, book.Close())
	require.NoError(t, afero.WriteFile(fs, "template/ft.xlsx", buf.Bytes(), 0644))

	cfg := &config.SheetConfig{TemplatePath: "template/ft.xlsx", Worksheet: "Planilha1", OutputDir: "output"}
	filler := sheet.NewFiller(fs, cfg, storage.NewOutputStore(fs, cfg.OutputDir)).
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) })

	uploads := storage.NewUploadStore(fs, "uploads", 1<<20)
	p := &fakeProvider{resp: textResponse(`Segue: {"nomeReceita":"Bolo de Cenoura!","ingredientes":[{"nome":"Cenoura","qtdBruta":300,"qtdLiquida":250,"preco":null}],"modoPreparo":"Asse.","avisos":["rendimento não informado"]}`)}

	svc := NewService(
		NewResolver(&fakeFetcher{}, &fakeExtractor{}, uploads),
		NewStructuringService(p, nil, "", 4000),
		filler,
		uploads,
	)

	result, err := svc.Process(context.Background(), Source{Text: "bolo de cenoura"})
	require.NoError(t, err)
	assert.Equal(t, KindText, result.Kind)
	assert.Equal(t, "Bolo de Cenoura!", result.Recipe.Name)
	assert.Equal(t, []string{"rendimento não informado"}, result.Recipe.Warnings)
	assert.Equal(t, "FT_Bolo_de_Cenoura_.xlsx", result.File.FileName)

	persisted, err := afero.ReadFile(fs, "output/FT_Bolo_de_Cenoura_.xlsx")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(persisted, result.File.Content))
}

func TestProcessRemovesUploadOnSuccess(t *testing.T) {
	uploads := &fakeUploads{files: map[string][]byte{"uploads/a.png": []byte("img")}}
	filler := &fakeFiller{file: &sheet.GeneratedFile{FileName: "FT_X.xlsx", Content: []byte("xlsx")}}
	svc := NewService(
		NewResolver(&fakeFetcher{}, &fakeExtractor{text: "receita"}, uploads),
		&fakeStructurer{recipe: &common.StructuredRecipe{Name: "X"}},
		filler,
		uploads,
	)

	result, err := svc.Process(context.Background(), Source{Image: &ImageUpload{Path: "uploads/a.png"}})
	require.NoError(t, err)
	assert.Equal(t, KindImage, result.Kind)
	assert.Equal(t, []string{"uploads/a.png"}, uploads.removed)
}

func TestProcessRemovesUploadOnFailure(t *testing.T) {
	uploads := &fakeUploads{files: map[string][]byte{"uploads/a.png": []byte("img")}}
	structurer := &fakeStructurer{}
	svc := NewService(
		NewResolver(&fakeFetcher{}, &fakeExtractor{err: common.ErrExtractionFailed}, uploads),
		structurer,
		&fakeFiller{},
		uploads,
	)

	_, err := svc.Process(context.Background(), Source{Image: &ImageUpload{Path: "uploads/a.png"}})
	require.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.Equal(t, []string{"uploads/a.png"}, uploads.removed)
	assert.Empty(t, structurer.content)
}

func TestProcessRemovesUploadWhenAmbiguous(t *testing.T) {
	uploads := &fakeUploads{}
	svc := NewService(
		NewResolver(&fakeFetcher{}, &fakeExtractor{}, uploads),
		&fakeStructurer{},
		&fakeFiller{},
		uploads,
	)

	_, err := svc.Process(context.Background(), Source{Text: "bolo", Image: &ImageUpload{Path: "uploads/b.jpg"}})
	require.ErrorIs(t, err, common.ErrAmbiguousInput)
	assert.Equal(t, []string{"uploads/b.jpg"}, uploads.removed)
}

func TestProcessStopsOnStructuringError(t *testing.T) {
	filler := &fakeFiller{}
	svc := NewService(
		NewResolver(&fakeFetcher{body: "<html></html>"}, &fakeExtractor{}, &fakeUploads{}),
		&fakeStructurer{err: common.ErrMalformedResponse},
		filler,
		&fakeUploads{},
	)

	_, err := svc.Process(context.Background(), Source{Link: "https://example.com"})
	assert.ErrorIs(t, err, common.ErrMalformedResponse)
}
