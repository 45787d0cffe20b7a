package captions

import (
	"fmt"
	"strings"

	"captioner/internal/domain"
)

const systemInstruction = `You are a social media copywriter for small businesses. Reply ONLY with valid JSON of the form {"captions": string[]}. Do not add explanations, markdown or code fences.`

// BuildPrompt renders the system and user instructions for a request. Topic
// and tone are embedded verbatim.
func BuildPrompt(req domain.GenerationRequest) (system string, user string) {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Write %d short marketing captions for a %s business. ", req.Count, req.Topic)
	fmt.Fprintf(sb, "Use a %s tone. ", req.Tone)
	sb.WriteString("Each caption should be ready to post on Instagram, may include one or two relevant emojis and hashtags, and must be different from the others. ")
	fmt.Fprintf(sb, `Return them as {"captions": [...]} with exactly %d strings.`, req.Count)
	return systemInstruction, sb.String()
}
