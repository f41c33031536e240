package provider

import (
	"context"
)

// 內容區塊類型
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
)

// ImageSource 內嵌 base64 圖片
type ImageSource struct {
	Type      string `json:"type"` // 固定為 base64
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ContentBlock 表示訊息中的一個內容區塊
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Request 表示發送到 AI 提供者的請求
type Request struct {
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

// Usage 使用量
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// FirstText 返回第一個文字區塊，略過非文字區塊
func (r *Response) FirstText() (string, bool) {
	if r == nil {
		return "", false
	}
	for _, block := range r.Content {
		if block.Type == BlockTypeText {
			return block.Text, true
		}
	}
	return "", false
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Complete 發送單輪補全請求
	Complete(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}

// TextMessage 建立純文字的 user 訊息
func TextMessage(text string) Message {
	return Message{
		Role:    "user",
		Content: []ContentBlock{{Type: BlockTypeText, Text: text}},
	}
}

// ImageMessage 建立圖片加指示文字的 user 訊息
func ImageMessage(mediaType, base64Data, instruction string) Message {
	return Message{
		Role: "user",
		Content: []ContentBlock{
			{
				Type: BlockTypeImage,
				Source: &ImageSource{
					Type:      "base64",
					MediaType: mediaType,
					Data:      base64Data,
				},
			},
			{Type: BlockTypeText, Text: instruction},
		},
	}
}
