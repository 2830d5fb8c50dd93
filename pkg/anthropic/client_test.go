package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseText_ConcatenatesTextBlocks(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "hello "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "world"},
		},
	}
	assert.Equal(t, "hello world", resp.Text())
}

func TestResponseText_Empty(t *testing.T) {
	resp := &MessageResponse{}
	assert.Equal(t, "", resp.Text())
}

func TestTokenUsage_Add(t *testing.T) {
	u := TokenUsage{InputTokens: 100, OutputTokens: 20}
	u.Add(TokenUsage{InputTokens: 50, OutputTokens: 10, CacheReadInputTokens: 5})

	assert.Equal(t, int64(150), u.InputTokens)
	assert.Equal(t, int64(30), u.OutputTokens)
	assert.Equal(t, int64(5), u.CacheReadInputTokens)
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("you are a classifier")

	assert.Len(t, blocks, 1)
	assert.Equal(t, "you are a classifier", blocks[0].Text)
	assert.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestToSDKMessages_Roles(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	assert.Len(t, msgs, 2)
}
