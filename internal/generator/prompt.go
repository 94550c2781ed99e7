package generator

import (
	"strings"
	"unicode/utf8"
)

const (
	answerMarker  = "Answer:"
	localPrefix   = "[Local AI Answer]: "
	minAnswerLen  = 5
	contextJoiner = "\n\n"
)

// HostedPrompt builds the single user message sent to the chat model.
func HostedPrompt(query string, contexts []string) string {
	return "Context: " + strings.Join(contexts, contextJoiner) + "\n\nQuestion: " + query + "\n\n" + answerMarker
}

// LocalPrompt builds the stricter instruction prompt for small local models.
func LocalPrompt(query string, contexts []string) string {
	var b strings.Builder
	b.WriteString("Use ONLY the following context to answer the question. \n")
	b.WriteString(`If the information is not in the context, your answer MUST be: "` + RefusalAnswer + `".`)
	b.WriteString("\n\nContext: \n")
	b.WriteString(strings.Join(contexts, contextJoiner))
	b.WriteString("\n\nQuestion: \n")
	b.WriteString(query)
	b.WriteString("\n\n" + answerMarker)
	return b.String()
}

// extractAnswer pulls the model's answer out of the generated text: everything after
// the last "Answer:" marker, or everything after the prompt when the marker is absent.
func extractAnswer(generated, prompt string) string {
	if i := strings.LastIndex(generated, answerMarker); i >= 0 {
		return strings.TrimSpace(generated[i+len(answerMarker):])
	}
	n := utf8.RuneCountInString(prompt)
	r := []rune(generated)
	if len(r) <= n {
		return ""
	}
	return strings.TrimSpace(string(r[n:]))
}
