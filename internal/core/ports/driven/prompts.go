package driven

// PromptStore provides access to LLM prompt templates.
// Template names are the domain.Prompt* constants.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations fall back to domain.DefaultPrompt when no override exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}
