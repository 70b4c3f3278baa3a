package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/vbonduro/photoshare/internal/vision"
)

const (
	// Tag lists are short; 256 leaves room for a verbose model.
	tagMaxTokens   = 256
	replyMaxTokens = 300
)

const replyPrompt = `You are a photo gallery assistant. The user searched for: %q.
%d photos matched. Their tags were:
%s
Reply in one or two friendly sentences describing what was found.`

type ClaudeTagger struct {
	client *anthropic.Client
	model  string
}

func NewClaudeTagger(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeTagger {
	return &ClaudeTagger{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (t *ClaudeTagger) Tag(ctx context.Context, r io.Reader, mimeType string) ([]string, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	resp, err := t.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(t.model),
		MaxTokens: tagMaxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mimeType),
					base64.StdEncoding.EncodeToString(imageData),
				)),
				anthropic.NewTextMessageContent(vision.TagPrompt),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	return vision.ParseTags(firstText(resp)), nil
}

func (t *ClaudeTagger) Respond(ctx context.Context, query string, tagged [][]string) (string, error) {
	var lines strings.Builder
	for i, tags := range tagged {
		fmt.Fprintf(&lines, "%d. %s\n", i+1, strings.Join(tags, ", "))
	}

	resp, err := t.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(t.model),
		MaxTokens: replyMaxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(fmt.Sprintf(replyPrompt, query, len(tagged), lines.String())),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	return strings.TrimSpace(firstText(resp)), nil
}

func firstText(resp anthropic.MessagesResponse) string {
	for i := range resp.Content {
		if resp.Content[i].Type == anthropic.MessagesContentTypeText {
			return resp.Content[i].GetText()
		}
	}
	return ""
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// Unknown types are coerced to jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
