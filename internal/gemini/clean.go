package gemini

import "strings"

// StripCodeFences removes markdown code fences the model sometimes wraps
// around its output despite instructions not to.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```latex") {
		text = text[len("```latex"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}

	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}

	return strings.TrimSpace(text)
}

// ValidateLatexStructure checks the generated paper has a document skeleton
// and balanced enumerate environments.
func ValidateLatexStructure(latex string) bool {
	hasDocumentClass := strings.Contains(latex, `\documentclass`)
	hasBeginDocument := strings.Contains(latex, `\begin{document}`)
	hasEndDocument := strings.Contains(latex, `\end{document}`)

	beginEnumerate := strings.Count(latex, `\begin{enumerate}`)
	endEnumerate := strings.Count(latex, `\end{enumerate}`)

	return hasDocumentClass && hasBeginDocument && hasEndDocument && beginEnumerate == endEnumerate
}
