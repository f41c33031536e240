package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recipe-sheet/internal/core/ai/cache"
	"recipe-sheet/internal/core/ai/provider"
	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boloJSON = `{"nomeReceita":"Bolo","ingredientes":[],"modoPreparo":"mix","avisos":[]}`

func TestStructureProseWrappedResponse(t *testing.T) {
	p := &fakeProvider{resp: textResponse("Here you go:\n```json\n" + boloJSON + "\n```")}
	s := NewStructuringService(p, nil, "system", 4000)

	recipe, err := s.Structure(context.Background(), "bolo simples")
	require.NoError(t, err)
	assert.Equal(t, "Bolo", recipe.Name)
	assert.Equal(t, "mix", recipe.PreparationText)
	assert.NotNil(t, recipe.Ingredients)
	assert.Empty(t, recipe.Ingredients)
	assert.Empty(t, recipe.Warnings)
}

func TestStructureRequestShape(t *testing.T) {
	p := &fakeProvider{resp: textResponse(boloJSON)}
	s := NewStructuringService(p, nil, "você é um chef", 4000)

	_, err := s.Structure(context.Background(), "3 ovos e 2 xícaras de farinha")
	require.NoError(t, err)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, "você é um chef", req.System)
	assert.Equal(t, 4000, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 1)

	prompt := req.Messages[0].Content[0].Text
	assert.Contains(t, prompt, "3 ovos e 2 xícaras de farinha")
	assert.Contains(t, prompt, `"nomeReceita"`)
	assert.Contains(t, prompt, `"qtdBruta"`)
}

func TestStructureIngredients(t *testing.T) {
	reply := `{"nomeReceita":"Pudim {especial}","ingredientes":[` +
		`{"nome":"Leite","qtdBruta":395,"qtdLiquida":395,"preco":8.9},` +
		`{"nome":"Ovos","qtdBruta":150,"qtdLiquida":135,"preco":null}],` +
		`"modoPreparo":"1. Bata.","avisos":["1 lata = 395 g"]} Obs: use forma de 20 cm }`
	p := &fakeProvider{resp: textResponse(reply)}
	s := NewStructuringService(p, nil, "", 4000)

	recipe, err := s.Structure(context.Background(), "pudim")
	require.NoError(t, err)
	assert.Equal(t, "Pudim {especial}", recipe.Name)
	require.Len(t, recipe.Ingredients, 2)
	require.NotNil(t, recipe.Ingredients[0].Price)
	assert.InDelta(t, 8.9, *recipe.Ingredients[0].Price, 1e-9)
	assert.Nil(t, recipe.Ingredients[1].Price)
	assert.Equal(t, 135.0, recipe.Ingredients[1].NetQuantity)
	assert.Equal(t, []string{"1 lata = 395 g"}, recipe.Warnings)
}

func TestStructureSkipsBracedProse(t *testing.T) {
	reply := "Usei {chaves} no texto.\n```json\n" + boloJSON + "\n```"
	p := &fakeProvider{resp: textResponse(reply)}

	recipe, err := NewStructuringService(p, nil, "", 4000).Structure(context.Background(), "bolo")
	require.NoError(t, err)
	assert.Equal(t, "Bolo", recipe.Name)
}

func TestStructureMalformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  error
	}{
		{"no braces", "Desculpe, não consegui entender a receita.", common.ErrMalformedResponse},
		{"unbalanced", `{"nomeReceita": "Bolo"`, common.ErrMalformedResponse},
		{"empty name", `{"nomeReceita":"  ","ingredientes":[],"modoPreparo":"","avisos":[]}`, common.ErrMalformedResponse},
		{"type mismatch", `{"nomeReceita":"Bolo","ingredientes":[{"nome":"Ovo","qtdBruta":"dois"}]}`, common.ErrJSONParse},
		{"invalid json", `{nomeReceita: Bolo}`, common.ErrJSONParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{resp: textResponse(tt.reply)}
			_, err := NewStructuringService(p, nil, "", 4000).Structure(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStructureNoTextBlock(t *testing.T) {
	p := &fakeProvider{resp: &provider.Response{Content: []provider.ContentBlock{{Type: "tool_use"}}}}
	_, err := NewStructuringService(p, nil, "", 4000).Structure(context.Background(), "x")
	assert.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestStructureProviderError(t *testing.T) {
	p := &fakeProvider{err: common.ErrAIService.Wrap(errors.New("overloaded"))}
	_, err := NewStructuringService(p, nil, "", 4000).Structure(context.Background(), "x")
	require.ErrorIs(t, err, common.ErrAIService)
	assert.True(t, strings.Contains(err.Error(), "overloaded"))
}

func TestStructureUsesCache(t *testing.T) {
	store := cache.NewManager(&config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	p := &fakeProvider{resp: textResponse("ok " + boloJSON)}
	s := NewStructuringService(p, store, "", 4000)

	first, err := s.Structure(context.Background(), "bolo")
	require.NoError(t, err)
	second, err := s.Structure(context.Background(), "bolo")
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls())
	assert.Equal(t, first, second)

	cached, err := store.Get(context.Background(), "bolo")
	require.NoError(t, err)
	assert.Equal(t, boloJSON, cached)

	_, err = s.Structure(context.Background(), "outro bolo")
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls())
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, content string) (string, error) {
	return "", errors.New("connection refused")
}
func (failingStore) Set(ctx context.Context, content, value string) error {
	return errors.New("connection refused")
}
func (failingStore) Close() error { return nil }

func TestStructureIgnoresCacheFailure(t *testing.T) {
	p := &fakeProvider{resp: textResponse(boloJSON)}
	s := NewStructuringService(p, failingStore{}, "", 4000)

	recipe, err := s.Structure(context.Background(), "bolo")
	require.NoError(t, err)
	assert.Equal(t, "Bolo", recipe.Name)
}

func TestStructureDoesNotCacheFailures(t *testing.T) {
	store := cache.NewManager(&config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	p := &fakeProvider{resp: textResponse("sem json")}
	_, err := NewStructuringService(p, store, "", 4000).Structure(context.Background(), "bolo")
	require.Error(t, err)

	_, err = store.Get(context.Background(), "bolo")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}
