package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "two liters of milk",
			want:  "two liters of milk",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "underscore and asterisk",
			input: "olive_oil *extra*",
			want:  `olive\_oil \*extra\*`,
		},
		{
			name:  "brackets and parens",
			input: "eggs [large] (dozen)",
			want:  `eggs \[large\] \(dozen\)`,
		},
		{
			name:  "punctuation",
			input: "price: 3.50!",
			want:  `price: 3\.50\!`,
		},
		{
			name:  "dash and plus",
			input: "semi-skimmed +1",
			want:  `semi\-skimmed \+1`,
		},
		{
			name:  "backslash",
			input: `a\b`,
			want:  `a\\b`,
		},
		{
			name:  "unicode preserved",
			input: "молоко 3.2%",
			want:  `молоко 3\.2%`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeMarkdownV2(tt.input))
		})
	}
}

func TestEscapeMarkdownV2_AllMetacharacters(t *testing.T) {
	for _, ch := range "_*[]()~`>#+-=|{}.!" {
		escaped := EscapeMarkdownV2(string(ch))
		assert.Equal(t, `\`+string(ch), escaped, "metacharacter %q", ch)
	}
}
