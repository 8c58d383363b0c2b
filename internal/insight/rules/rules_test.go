package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowher/empowher-server/internal/model"
)

func TestSimplify_ReplacesClinicalTerms(t *testing.T) {
	p := New()
	out, err := p.Simplify(context.Background(), "Behavioral activation helps with depression", "en", "primary")
	require.NoError(t, err)
	assert.Equal(t, "doing small helpful tasks helps with feeling very low", out)
}

func TestSimplify_LeavesPlainTextAlone(t *testing.T) {
	p := New()
	out, err := p.Simplify(context.Background(), "take a short walk", "en", "primary")
	require.NoError(t, err)
	assert.Equal(t, "take a short walk", out)
}

func TestAnalyzeSentiment_Keywords(t *testing.T) {
	p := New()

	pos, err := p.AnalyzeSentiment(context.Background(), "I felt happy and good today", "en")
	require.NoError(t, err)
	assert.Greater(t, pos.Score, 0.0)
	assert.Contains(t, pos.Emotions, "positive")

	neg, err := p.AnalyzeSentiment(context.Background(), "everything is terrible and I feel sad", "en")
	require.NoError(t, err)
	assert.Less(t, neg.Score, 0.0)
	assert.Contains(t, neg.Emotions, "negative")

	neutral, err := p.AnalyzeSentiment(context.Background(), "I went to the market", "en")
	require.NoError(t, err)
	assert.Zero(t, neutral.Score)
	assert.Contains(t, neutral.Emotions, "neutral")
}

func TestAnalyzeSentiment_EmptyText(t *testing.T) {
	p := New()
	s, err := p.AnalyzeSentiment(context.Background(), "   ", "en")
	require.NoError(t, err)
	assert.Zero(t, s.Score)
	assert.Zero(t, s.Magnitude)
}

func TestGenerate_AlwaysUnavailable(t *testing.T) {
	p := New()
	_, err := p.Generate(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, model.ErrUnavailable)
}
