package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInsightPayload_Valid(t *testing.T) {
	p, err := DecodeInsightPayload(`{"insights":["you are doing okay"],"encouragement":"keep going"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"you are doing okay"}, p.Insights)
	assert.Equal(t, "keep going", p.Encouragement)
}

func TestDecodeInsightPayload_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"insights\":[\"a\"],\"encouragement\":\"b\"}\n```"
	p, err := DecodeInsightPayload(raw)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Encouragement)
}

func TestDecodeInsightPayload_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":              "hello there",
		"missing insights":      `{"encouragement":"b"}`,
		"empty insights":        `{"insights":[],"encouragement":"b"}`,
		"blank insight":         `{"insights":["  "],"encouragement":"b"}`,
		"missing encouragement": `{"insights":["a"]}`,
		"unknown fields":        `{"insights":["a"],"encouragement":"b","extra":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInsightPayload(raw)
			assert.Error(t, err)
		})
	}
}
