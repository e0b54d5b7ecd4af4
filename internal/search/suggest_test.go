package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
)

func TestSuggestions(t *testing.T) {
	docs := []index.Document{
		doc("p1", "AI Agents for Science Discovery", "", []string{"ai"}, []string{"ai-safety", "agents"}),
		doc("p2", "Chain of Thought Prompting", "", []string{"llm"}, []string{"prompting"}),
		doc("p3", "Explainable AI", "", []string{"ai"}, nil),
	}

	tests := []struct {
		name    string
		partial string
		want    []string
	}{
		{"too short", "a", []string{}},
		{"blank", "   ", []string{}},
		{"short after trim", " a ", []string{}},
		{"tags and titles", "ai", []string{"AI Agents for", "Chain of Thought", "Explainable AI", "ai", "ai-safety"}},
		{"case insensitive", "PROMPT", []string{"Chain of Thought", "prompting"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggestions(docs, tt.partial))
		})
	}
}

func TestSuggestions_Capped(t *testing.T) {
	var docs []index.Document
	for i := 0; i < 15; i++ {
		docs = append(docs, doc(fmt.Sprintf("p%d", i), "", "", nil, []string{fmt.Sprintf("vision-%02d", i)}))
	}

	got := Suggestions(docs, "vision")

	assert.Len(t, got, MaxSuggestions)
	assert.Equal(t, "vision-00", got[0])
	assert.Equal(t, "vision-09", got[9])
}
