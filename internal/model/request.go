package model

// GenerateRequest 是 POST /generate 的请求体。
// url 必须出现但可以为空字符串，空值按 unknown/unknown 生成。
type GenerateRequest struct {
	URL        *string `json:"url" binding:"required"`
	PoemStyle  string  `json:"poem_style"`  // 例如 唐詩、俳句、現代詩
	NovelGenre string  `json:"novel_genre"` // 例如 懸疑、愛情、奇幻、科幻
	Tone       string  `json:"tone"`        // 例如 嚴肅、幽默、抒情
	Lang       string  `json:"lang"`        // 'en', 'zh-TW'
	Locale     string  `json:"locale"`      // 'en-GB', 'zh-TW'
}

// RepoURL 返回提交的 URL，未设置时为空
func (r GenerateRequest) RepoURL() string {
	if r.URL == nil {
		return ""
	}
	return *r.URL
}

// Presets 按请求语言生成预设
func (r GenerateRequest) Presets() GenerationPresets {
	return GenerationPresets{
		PoemStyle:  r.PoemStyle,
		NovelGenre: r.NovelGenre,
		Tone:       r.Tone,
		Language:   LanguageFor(r.Lang, r.Locale),
	}
}

// ChatRequest 是 POST /chat 的请求体，message 可以为空字符串
type ChatRequest struct {
	Message             *string       `json:"message" binding:"required"`
	ConversationHistory []ChatMessage `json:"conversation_history"`
	Lang                string        `json:"lang"`
	Locale              string        `json:"locale"`
}

// UserMessage 返回本轮用户消息，未设置时为空
func (r ChatRequest) UserMessage() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}

// ChatMessage 是对话中的一条角色消息，顺序有意义
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerationPresets 是单次请求内不可变的风格预设
type GenerationPresets struct {
	PoemStyle  string
	NovelGenre string
	Tone       string
	Language   Language
}
