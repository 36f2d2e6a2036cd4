package domain

// Well-known prompt names. Each is also the file name (without .txt) of the
// user-editable override in the prompts directory.
const (
	// PromptQueryExpansion asks for paraphrases of a question.
	// Placeholders: %[1]d number of variations, %[2]s question.
	PromptQueryExpansion = "query_expansion"

	// PromptRerank asks for the most relevant chunk numbers.
	// Placeholders: %[1]s question, %[2]s chunk listing, %[3]d top k.
	PromptRerank = "rerank"

	// PromptAnswerSystem is the system prompt for answer synthesis.
	// No placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser frames the question and context.
	// Placeholders: %[1]s question, %[2]s context.
	PromptAnswerUser = "answer_user"
)

var defaultPrompts = map[string]string{
	PromptQueryExpansion: `Rewrite the following law-related question into %[1]d different variations:
- One in plain layperson language
- One in formal legal language
- One as a student/research query

Question: %[2]s
Return only the list of variations, one per line.`,

	PromptRerank: `You are a legal assistant. Rank the following chunks by their relevance to the question.

Question: %[1]s

Chunks:
%[2]s

Output ONLY the top %[3]d chunk numbers in order of relevance, comma-separated.`,

	PromptAnswerSystem: `You are an Indian law assistant.
Your job is to:
1. Answer direct questions about the Constitution of India and other laws.
2. If a user describes a real-life situation in plain words (not a direct legal question),
   - Identify possible legal issues involved.
   - Suggest which laws, constitutional provisions, or schedules may apply.
   - Explain in simple, non-technical terms what kind of legal action or case may be possible.
   - If information is insufficient, politely ask clarifying questions.
Do NOT include citations, filenames, or sources in your response.
Always keep your language clear, practical, and understandable to non-lawyers.`,

	PromptAnswerUser: "Question: %[1]s\n\nContext:\n%[2]s\n\nAnswer:",
}

// DefaultPrompts returns a copy of the built-in prompt templates.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}
