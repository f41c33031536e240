package sheet

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/infrastructure/storage"
	"recipe-sheet/internal/pkg/common"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Layout 模板中各欄位的儲存格位置
type Layout struct {
	RevisionDateCell string
	RecipeNameCell   string
	PreparationCell  string

	FirstIngredientRow int
	MaxIngredients     int
	NameColumn         string
	GrossColumn        string
	NetColumn          string
	PriceColumn        string

	RevisionDateLabel string
	RecipeNameLabel   string
	PreparationLabel  string
	DateFormat        string
}

// DefaultLayout 對應 Modelo_FT_2026.xlsx
func DefaultLayout() Layout {
	return Layout{
		RevisionDateCell:   "B2",
		RecipeNameCell:     "B3",
		PreparationCell:    "E19",
		FirstIngredientRow: 5,
		MaxIngredients:     12,
		NameColumn:         "B",
		GrossColumn:        "C",
		NetColumn:          "D",
		PriceColumn:        "G",
		RevisionDateLabel:  "Data de revisão: ",
		RecipeNameLabel:    "Preparo: ",
		PreparationLabel:   "FORMA DE PREPARO:\n\n",
		DateFormat:         "02/01/2006",
	}
}

// GeneratedFile 產出的技術表
type GeneratedFile struct {
	FileName string
	Content  []byte
}

// Filler 將結構化食譜填入技術表模板
type Filler struct {
	fs           afero.Fs
	templatePath string
	worksheet    string
	layout       Layout
	outputs      *storage.OutputStore
	now          func() time.Time
}

// NewFiller 創建技術表填寫器
func NewFiller(fs afero.Fs, cfg *config.SheetConfig, outputs *storage.OutputStore) *Filler {
	return &Filler{
		fs:           fs,
		templatePath: cfg.TemplatePath,
		worksheet:    cfg.Worksheet,
		layout:       DefaultLayout(),
		outputs:      outputs,
		now:          time.Now,
	}
}

// WithLayout 替換儲存格配置
func (f *Filler) WithLayout(layout Layout) *Filler {
	f.layout = layout
	return f
}

// WithClock 替換修訂日期使用的時鐘
func (f *Filler) WithClock(now func() time.Time) *Filler {
	f.now = now
	return f
}

// Fill 每次都從模板重新開啟，不修改模板本身
func (f *Filler) Fill(ctx context.Context, recipe *common.StructuredRecipe) (*GeneratedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl, err := storage.ReadFile(f.fs, f.templatePath)
	if err != nil {
		return nil, err
	}

	book, err := excelize.OpenReader(bytes.NewReader(tpl))
	if err != nil {
		return nil, common.ErrFileSystem.Wrapf(err, "failed to open template %s", f.templatePath)
	}
	defer book.Close()

	if idx, err := book.GetSheetIndex(f.worksheet); err != nil || idx < 0 {
		return nil, common.ErrFileSystem.Wrapf(err, "worksheet %s not found in template %s", f.worksheet, f.templatePath)
	}

	if err := f.write(book, recipe); err != nil {
		return nil, common.ErrFileSystem.Wrapf(err, "failed to fill worksheet %s", f.worksheet)
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, common.ErrFileSystem.Wrapf(err, "failed to serialize workbook")
	}

	name := FileName(recipe.Name)
	content := buf.Bytes()
	path, err := f.outputs.Write(name, content)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Technical sheet generated",
		zap.String("file", path),
		zap.Int("bytes", len(content)),
		zap.Int("ingredients_written", min(len(recipe.Ingredients), f.layout.MaxIngredients)),
	)

	return &GeneratedFile{FileName: name, Content: content}, nil
}

func (f *Filler) write(book *excelize.File, recipe *common.StructuredRecipe) error {
	l := f.layout
	cells := []struct {
		cell  string
		value interface{}
	}{
		{l.RevisionDateCell, l.RevisionDateLabel + f.now().Format(l.DateFormat)},
		{l.RecipeNameCell, l.RecipeNameLabel + recipe.Name},
		{l.PreparationCell, l.PreparationLabel + recipe.PreparationText},
	}
	for _, c := range cells {
		if err := book.SetCellValue(f.worksheet, c.cell, c.value); err != nil {
			return fmt.Errorf("cell %s: %w", c.cell, err)
		}
	}

	if len(recipe.Ingredients) > l.MaxIngredients {
		common.LogWarn("Ingredient list truncated",
			zap.Int("ingredients", len(recipe.Ingredients)),
			zap.Int("max", l.MaxIngredients),
		)
	}

	for i, ing := range recipe.Ingredients {
		if i >= l.MaxIngredients {
			break
		}
		row := l.FirstIngredientRow + i
		values := map[string]interface{}{
			l.NameColumn:  ing.Name,
			l.GrossColumn: ing.GrossQuantity,
			l.NetColumn:   ing.NetQuantity,
		}
		if ing.Price != nil {
			values[l.PriceColumn] = *ing.Price
		}
		for col, v := range values {
			cell := fmt.Sprintf("%s%d", col, row)
			if err := book.SetCellValue(f.worksheet, cell, v); err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
		}
	}
	return nil
}
