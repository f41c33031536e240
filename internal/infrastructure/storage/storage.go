package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"recipe-sheet/internal/pkg/common"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// UploadStore 暫存上傳的圖片，單次請求使用後刪除
type UploadStore struct {
	fs      afero.Fs
	dir     string
	maxSize int64
}

// NewUploadStore 創建上傳暫存
func NewUploadStore(fs afero.Fs, dir string, maxSize int64) *UploadStore {
	return &UploadStore{fs: fs, dir: dir, maxSize: maxSize}
}

// Save 將上傳內容寫入暫存目錄，以隨機檔名避免同名衝突
func (s *UploadStore) Save(r io.Reader, originalName string) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", common.ErrFileSystem.Wrapf(err, "failed to create upload dir %s", s.dir)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, common.GenerateUUID()+ext)

	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", common.ErrFileSystem.Wrapf(err, "failed to create upload file %s", path)
	}

	// 多讀一個 byte 用來判斷是否超出限制
	n, copyErr := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	if copyErr == nil && n > s.maxSize {
		s.Remove(path)
		return "", common.ErrInvalidImage.Wrapf(nil, "Imagem excede o limite de %d bytes", s.maxSize)
	}
	if copyErr != nil || closeErr != nil {
		s.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", common.ErrFileSystem.Wrapf(copyErr, "failed to write upload file %s", path)
	}

	return path, nil
}

// Read 讀取暫存圖片
func (s *UploadStore) Read(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, common.ErrFileSystem.Wrapf(err, "failed to read upload file %s", path)
	}
	return data, nil
}

// Remove 刪除暫存圖片，失敗只記錄不回傳
func (s *UploadStore) Remove(path string) {
	if path == "" {
		return
	}
	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		common.LogDebug("Failed to remove upload file",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

// OutputStore 產出的技術表目錄，同名檔案直接覆蓋
type OutputStore struct {
	fs  afero.Fs
	dir string
}

// NewOutputStore 創建輸出目錄存取
func NewOutputStore(fs afero.Fs, dir string) *OutputStore {
	return &OutputStore{fs: fs, dir: dir}
}

// Write 寫入檔案並返回完整路徑
func (s *OutputStore) Write(name string, data []byte) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", common.ErrFileSystem.Wrapf(err, "failed to create output dir %s", s.dir)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return "", common.ErrFileSystem.Wrapf(err, "failed to write output file %s", path)
	}
	return path, nil
}

// Read 讀取已產出的檔案
func (s *OutputStore) Read(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to read output file %s: %w", name, err)
	}
	return data, nil
}

// ReadFile 從檔案系統讀取固定資源（模板、提示詞）
func ReadFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, common.ErrFileSystem.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}
