package service

import (
	"fmt"
	"strings"

	"repo-saga-backend/internal/model"
	"repo-saga-backend/internal/repo"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// 模板变量
const (
	keyOwner         = "owner"
	keyName          = "name"
	keyMetadata      = "metadata"
	keyInsightReport = "insight_report"
	keyHints         = "hints"
	keyHistory       = "conversation_history"
	keyMessage       = "message"
)

// sagaPrompts 是某一种语言下三个步骤的提示词模板
type sagaPrompts struct {
	insight prompt.ChatTemplate
	poem    prompt.ChatTemplate
	novel   prompt.ChatTemplate

	styleHint    func(string) string
	genreHint    func(string) string
	toneHint     func(string) string
	metadataHint func(*repo.Metadata) string
}

var englishSagaPrompts = &sagaPrompts{
	insight: prompt.FromMessages(schema.FString,
		schema.SystemMessage("You are a senior open-source code reviewer and technical writer."),
		schema.UserMessage("Please analyze the GitHub project {owner}/{name} and generate a project insight report.\n"+
			"Include the project's core functionality, technical features, design philosophy, etc., "+
			"and make reasonable inferences based on README and common directory structures.{metadata}"),
	),
	poem: prompt.FromMessages(schema.FString,
		schema.SystemMessage("You are a modern poet who specializes in technical themes."),
		schema.UserMessage("Based on the following project insight report, create a poem about the {owner}/{name} project:\n"+
			"{insight_report}\n\n"+
			"{hints}"+
			"Requirements: Be imaginative, reflect the beauty of code and the spirit of the project, "+
			"with clear stanzas for easy interface display."),
	),
	novel: prompt.FromMessages(schema.FString,
		schema.SystemMessage("You are a novelist who can blend technology with humanities."),
		schema.UserMessage("Based on the following project insight report, create a short story about the {owner}/{name} project:\n"+
			"{insight_report}\n\n"+
			"{hints}"+
			"Requirements: Include plot and characters, reflect the story behind the project "+
			"and the spirit of the developers, with appropriate length."),
	),
	styleHint: func(v string) string { return "Style: " + v + ". " },
	genreHint: func(v string) string { return "Novel genre: " + v + ". " },
	toneHint:  func(v string) string { return "Tone: " + v + ". " },
	metadataHint: func(md *repo.Metadata) string {
		var b strings.Builder
		b.WriteString("\n\nKnown repository metadata:")
		if md.Description != "" {
			fmt.Fprintf(&b, "\n- Description: %s", md.Description)
		}
		if md.Language != "" {
			fmt.Fprintf(&b, "\n- Primary language: %s", md.Language)
		}
		fmt.Fprintf(&b, "\n- Stars: %d", md.Stars)
		if len(md.Topics) > 0 {
			fmt.Fprintf(&b, "\n- Topics: %s", strings.Join(md.Topics, ", "))
		}
		return b.String()
	},
}

var chineseSagaPrompts = &sagaPrompts{
	insight: prompt.FromMessages(schema.FString,
		schema.SystemMessage("你是一位資深的開源程式碼審閱者與技術作家。"),
		schema.UserMessage("請分析 GitHub 專案 {owner}/{name}，產生一份專案洞察報告。\n"+
			"需要包含專案的核心功能、技術特點、設計理念等，並盡量參考 README 與常見目錄結構進行合理推斷。{metadata}"),
	),
	poem: prompt.FromMessages(schema.FString,
		schema.SystemMessage("你是一位擅長技術題材的現代詩歌創作者。"),
		schema.UserMessage("基於以下專案洞察報告，創作一首關於 {owner}/{name} 專案的詩歌：\n"+
			"{insight_report}\n\n"+
			"{hints}"+
			"要求：富有想像力，體現程式碼的美感和專案的精神，分段清晰，便於介面展示。"),
	),
	novel: prompt.FromMessages(schema.FString,
		schema.SystemMessage("你是一位能夠將技術與人文融合的小說作者。"),
		schema.UserMessage("基於以下專案洞察報告，創作一篇關於 {owner}/{name} 專案的短篇小說：\n"+
			"{insight_report}\n\n"+
			"{hints}"+
			"要求：有情節，有人物，體現專案背後的故事和開發者的精神，篇幅適中。"),
	),
	styleHint: func(v string) string { return "風格：" + v + "。" },
	genreHint: func(v string) string { return "小說類型：" + v + "。" },
	toneHint:  func(v string) string { return "語氣：" + v + "。" },
	metadataHint: func(md *repo.Metadata) string {
		var b strings.Builder
		b.WriteString("\n\n已知的倉庫資訊：")
		if md.Description != "" {
			fmt.Fprintf(&b, "\n- 描述：%s", md.Description)
		}
		if md.Language != "" {
			fmt.Fprintf(&b, "\n- 主要語言：%s", md.Language)
		}
		fmt.Fprintf(&b, "\n- 星數：%d", md.Stars)
		if len(md.Topics) > 0 {
			fmt.Fprintf(&b, "\n- 主題：%s", strings.Join(md.Topics, "、"))
		}
		return b.String()
	},
}

// promptsFor 未知语言一律按繁体中文处理
func promptsFor(lang model.Language) *sagaPrompts {
	if lang.IsEnglish() {
		return englishSagaPrompts
	}
	return chineseSagaPrompts
}

// poemHints 拼接诗歌风格与语气提示，未提供的预设不出现
func (p *sagaPrompts) poemHints(presets model.GenerationPresets) string {
	var hints string
	if presets.PoemStyle != "" {
		hints += p.styleHint(presets.PoemStyle)
	}
	if presets.Tone != "" {
		hints += p.toneHint(presets.Tone)
	}
	return hints
}

func (p *sagaPrompts) novelHints(presets model.GenerationPresets) string {
	var hints string
	if presets.NovelGenre != "" {
		hints += p.genreHint(presets.NovelGenre)
	}
	if presets.Tone != "" {
		hints += p.toneHint(presets.Tone)
	}
	return hints
}

const englishAssistantPersona = `You are the Repo Saga Assistant, a specialized AI helper for the Repo Saga Engine platform. Your primary purpose is to help users understand and optimize their experience with transforming GitHub repositories into poetry and fiction.

Your expertise includes:

1. Repository Analysis: Explaining how the platform analyzes GitHub projects, what information is extracted, and how it's processed
2. Literary Transformation: Guiding users on how to get better poetry and novel outputs, explaining different styles and tones available
3. Platform Features: Helping users understand the interface, settings, and customization options
4. Creative Optimization: Providing tips for selecting repositories that work well for literary transformation
5. Technical Support: Assisting with any issues related to URL input, generation process, or output quality

You should focus specifically on Repo Saga Engine functionality and avoid general programming discussions unless they directly relate to improving the literary transformation process.

Always respond in English with a helpful and knowledgeable tone.`

const chineseAssistantPersona = `你是 Repo Saga 助手，專門為 Repo Saga Engine 平台提供協助的 AI 助理。你的主要目的是幫助用戶理解並優化他們將 GitHub 倉庫轉化為詩歌和小說的體驗。

你的專業領域包括：

1. 倉庫分析：解釋平台如何分析 GitHub 專案、提取哪些資訊，以及如何處理這些資訊
2. 文學轉化：指導用戶如何獲得更好的詩歌和小說輸出，解釋可用的不同風格和語調
3. 平台功能：幫助用戶理解介面、設定和自訂選項
4. 創意優化：提供選擇適合文學轉化的倉庫的技巧
5. 技術支援：協助解決與 URL 輸入、生成過程或輸出品質相關的任何問題

你應該專注於 Repo Saga Engine 的功能，避免一般性的程式設計討論，除非它們直接關係到改善文學轉化過程。

請用繁體中文回應，語氣要有幫助且專業。`

// newAssistantPrompt 人设 + 最近的对话历史 + 当前用户消息
func newAssistantPrompt(persona string) prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(persona),
		schema.MessagesPlaceholder(keyHistory, true),
		schema.UserMessage("{message}"),
	)
}

var (
	englishAssistantPrompt = newAssistantPrompt(englishAssistantPersona)
	chineseAssistantPrompt = newAssistantPrompt(chineseAssistantPersona)
)

func assistantPromptFor(lang model.Language) prompt.ChatTemplate {
	if lang.IsEnglish() {
		return englishAssistantPrompt
	}
	return chineseAssistantPrompt
}
