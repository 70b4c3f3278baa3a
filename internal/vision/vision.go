package vision

import (
	"context"
	"io"
)

// TagPrompt is the shared prompt used by all tagging adapters.
const TagPrompt = `Describe this photo as search tags: the main subjects, the setting,
the activity and the mood. Respond with 3 to 8 short lowercase tags,
comma separated, and nothing else.`

// MaxTags caps how many tags are kept from a single model response.
const MaxTags = 10

type Tagger interface {
	Tag(ctx context.Context, r io.Reader, mimeType string) ([]string, error)
}

// Responder is an optional extension of Tagger that writes the chat reply for
// a photo search. Tagged holds the tags of each matching photo.
type Responder interface {
	Respond(ctx context.Context, query string, tagged [][]string) (string, error)
}
