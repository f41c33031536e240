package common

// StructuredRecipe AI 結構化後的食譜
// 注意：欄位名稱與提示詞中給 AI 的 JSON 範例必須一模一樣
type StructuredRecipe struct {
	Name            string       `json:"nomeReceita"`
	Ingredients     []Ingredient `json:"ingredientes"`
	PreparationText string       `json:"modoPreparo"`
	Warnings        []string     `json:"avisos"`
}

// Ingredient 食材
type Ingredient struct {
	Name          string   `json:"nome"`
	GrossQuantity float64  `json:"qtdBruta"`
	NetQuantity   float64  `json:"qtdLiquida"`
	Price         *float64 `json:"preco"` // 允許 null
}

// FileEnvelope 回傳給前端的檔案
type FileEnvelope struct {
	Name       string `json:"nome"`
	Base64Data string `json:"dados"`
}

// ProcessRecipeResponse 處理食譜成功的響應
type ProcessRecipeResponse struct {
	Success    bool         `json:"sucesso"`
	RecipeName string       `json:"nomeReceita"`
	Warnings   []string     `json:"avisos"`
	File       FileEnvelope `json:"arquivo"`
}

// ProcessRecipeRequest 處理食譜的 JSON 請求
type ProcessRecipeRequest struct {
	Text string `json:"texto" form:"texto"`
	Link string `json:"link" form:"link"`
}
