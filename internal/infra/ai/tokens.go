package ai

import (
	"github.com/pkoukk/tiktoken-go"

	"ai-access-platform/internal/domain/ports/adapter"
)

// estimateTokens counts prompt tokens locally with tiktoken. Unknown
// models fall back to the cl100k_base encoding, which is close enough
// for routing decisions.
func estimateTokens(model string, messages []adapter.Message) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	total := 0
	for _, m := range messages {
		// Chat format carries a few tokens of framing per message.
		total += 4
		total += len(enc.Encode(m.Content, nil, nil))
		total += len(enc.Encode(m.Role, nil, nil))
	}
	return total, nil
}
