package model

import "strings"

// Language 只支持英文与繁体中文
type Language string

const (
	LanguageEnglish            Language = "English"
	LanguageTraditionalChinese Language = "Traditional Chinese"
)

// IsEnglish 是 /generate 与 /chat 共用的语言判定：lang 为 "en" 或 locale 以 "en" 开头
func IsEnglish(lang, locale string) bool {
	return lang == "en" || strings.HasPrefix(locale, "en")
}

func LanguageFor(lang, locale string) Language {
	if IsEnglish(lang, locale) {
		return LanguageEnglish
	}
	return LanguageTraditionalChinese
}

// IsEnglish 对空值或未知取值一律视为繁体中文
func (l Language) IsEnglish() bool {
	return l == LanguageEnglish
}
