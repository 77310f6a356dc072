package propose

import (
	"fmt"
	"strings"
)

// DefaultPromptChars is how much of the document text is shown to the model.
const DefaultPromptChars = 2000

const promptTemplate = `You are an expert content editor and humanization specialist. Your task is to analyze the original text and create natural, human-like modifications that improve readability, engagement, and clarity while maintaining the original meaning and structure.

Original text:
%s...

Modification request: %s

HUMANIZATION GUIDELINES:
1. Make content more conversational and engaging
2. Use natural, flowing language that sounds human-written
3. Improve clarity and readability
4. Add subtle personality and warmth to the text
5. Maintain professional tone while being more approachable
6. Use active voice where appropriate
7. Break up long sentences for better flow
8. Add transitional phrases for smoother reading

TECHNICAL RULES:
1. For text replacements, provide EXACT text matches from the original (copy-paste exact text)
2. For highlighting, identify sentences or phrases that match the criteria
3. Always provide context to help identify the correct location
4. Be VERY precise with text matching - use exact strings from the original, including punctuation
5. If the request is about changing headings, look for patterns like "Chapter X:", "Section X:", etc.
6. If highlighting financial content, look for words like: financial, money, cost, budget, revenue, profit, investment, etc.
7. IMPORTANT: Only include modifications for text that actually exists in the original document
8. Make replacements sound natural and human-like, not robotic

IMPORTANT: Respond ONLY with valid JSON. Do not include any text before or after the JSON. Do not use markdown formatting.

Return a JSON object with this exact structure:
{
    "modifications": [
        {
            "type": "replace",
            "original_text": "exact text from original",
            "new_text": "humanized replacement text that sounds natural and engaging",
            "context": "brief context about where this text appears",
            "humanization_note": "explanation of how this makes the text more human-like"
        },
        {
            "type": "highlight",
            "text_to_highlight": "text to highlight",
            "context": "brief context about where this text appears",
            "reason": "why this text should be highlighted",
            "humanization_note": "how highlighting improves readability"
        }
    ],
    "summary": "Brief summary of all humanized modifications made",
    "humanization_approach": "Overall approach taken to make content more human and engaging"
}
`

// BuildPrompt embeds the first limit runes of text and the instruction in the
// editing prompt. The "..." marker follows the excerpt even when nothing was cut.
func BuildPrompt(text, instruction string, limit int) string {
	return fmt.Sprintf(promptTemplate, truncateRunes(text, limit), instruction)
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// StripCodeFence removes a markdown fence the model may wrap its JSON in.
func StripCodeFence(response string) string {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
