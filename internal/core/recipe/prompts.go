package recipe

import (
	"fmt"
	"strings"

	"recipe-sheet/internal/pkg/common"

	"github.com/spf13/afero"
)

// extractionInstruction 圖片抽取文字的固定指示
const extractionInstruction = "Extraia todo o texto desta imagem de receita, incluindo nome, ingredientes e modo de preparo."

// defaultSystemPrompt 內建的領域提示詞，可由設定檔指定的檔案覆蓋
const defaultSystemPrompt = `Você é um especialista em gastronomia profissional e em elaboração de fichas técnicas de preparo para cozinhas comerciais.

Sua tarefa é ler uma receita em qualquer formato (texto livre, página HTML ou texto extraído de foto) e organizar os dados culinários de forma padronizada.

Regras:
1. Identifique o nome da receita. Se não houver nome explícito, crie um nome curto e descritivo.
2. Liste cada ingrediente separadamente, sem agrupar, na ordem em que aparecem.
3. Converta todas as quantidades para gramas (g) ou mililitros (ml). Unidades como xícara, colher, unidade e pitada devem ser convertidas para valores aproximados em g ou ml.
4. qtdBruta é a quantidade comprada, antes do pré-preparo. qtdLiquida é a quantidade aproveitada após limpeza, descasque ou desossa. Quando não houver perda, use o mesmo valor nas duas.
5. Informe preco somente quando a receita trouxer o preço do ingrediente. Caso contrário, use null. Nunca invente preços.
6. Reescreva o modo de preparo em passos numerados, claros e objetivos, mantendo tempos e temperaturas.
7. Registre em avisos toda conversão aproximada, suposição ou informação ausente (por exemplo, rendimento não informado).
8. Ignore propagandas, comentários de leitores e qualquer conteúdo da página que não faça parte da receita.
9. Responda sempre em português do Brasil.`

// userPromptTemplate 結構化請求，JSON 範例即欄位契約
const userPromptTemplate = `Processe esta receita e retorne em formato JSON estruturado:

%s

Retorne APENAS um objeto JSON válido com esta estrutura:
{
  "nomeReceita": "nome da receita",
  "ingredientes": [
    {"nome": "ingrediente", "qtdBruta": 100, "qtdLiquida": 100, "preco": null}
  ],
  "modoPreparo": "texto completo do modo de preparo",
  "avisos": ["aviso1", "aviso2"]
}`

// BuildUserPrompt 將食譜內容嵌入結構化請求
func BuildUserPrompt(content string) string {
	return fmt.Sprintf(userPromptTemplate, content)
}

// LoadSystemPrompt 讀取系統提示詞；path 為空時使用內建提示詞
func LoadSystemPrompt(fs afero.Fs, path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", common.ErrFileSystem.Wrapf(err, "failed to read system prompt %s", path)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", common.ErrFileSystem.Wrapf(nil, "system prompt %s is empty", path)
	}
	return prompt, nil
}
