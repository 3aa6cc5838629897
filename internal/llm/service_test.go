package llm

import (
	"context"
	"testing"

	"hr-engine/internal/engine"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"skills": []}`, `{"skills": []}`},
		{"json fence", "```json\n{\"skills\": []}\n```", `{"skills": []}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with prose", "Here you go:\n```json\n{\"a\": 1}\n```\nthanks", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
}

func TestUnconfiguredProviderIsUnavailable(t *testing.T) {
	svc := NewService("none", "", "", nil)

	_, err := svc.Answer(context.Background(), "question", []string{"context"})
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)

	_, err = svc.ExtractJobSkills(context.Background(), "jd")
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)

	_, err = svc.ExtractResumeProfile(context.Background(), "resume")
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)
}

func TestUnknownProviderIsUnavailable(t *testing.T) {
	svc := NewService("mystery", "key", "model", nil)
	_, err := svc.Answer(context.Background(), "question", []string{"context"})
	assert.ErrorIs(t, err, engine.ErrCollaboratorUnavailable)
}
