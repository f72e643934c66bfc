package driven

// SettingsStore is a minimal key to string mapping used to persist
// user-chosen model identifiers and the free-text system prompt
// across sessions. Like the embedding stores it degrades on storage
// failure instead of returning errors.
type SettingsStore interface {
	// SaveValue upserts a value under key. Returns false on failure.
	SaveValue(key, value string) bool

	// GetValue returns the value stored under key, if present.
	GetValue(key string) (string, bool)
}

// Well-known settings keys.
const (
	SettingSystemPrompt = "system_prompt"
	SettingChatModel    = "chat_model"
	SettingTaggingModel = "tagging_model"
)
