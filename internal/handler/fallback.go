package handler

import (
	"fmt"
	"math/rand"

	"repo-saga-backend/internal/model"
)

// sagaFallback 生成失败时返回的固定内容，只有 insight 引用提交的 URL
// 中文文案为繁体，与最初的简体版本不逐字相同
type sagaFallback struct {
	insightFormat string
	poem          string
	novel         string
}

var (
	englishSagaFallback = sagaFallback{
		insightFormat: "Sorry, unable to analyze project %s. Please check if the URL is correct.",
		poem: "The world of code is full of mystery,\n" +
			"Sometimes we lose our way.\n" +
			"But this is the joy of exploration,\n" +
			"Every attempt is growth.",
		novel: "In a corner of the digital world, a mysterious project awaits discovery. " +
			"Though this exploration encountered difficulties, brave developers never give up their quest for truth.",
	}

	chineseSagaFallback = sagaFallback{
		insightFormat: "抱歉，無法分析專案 %s。請檢查 URL 是否正確。",
		poem: "程式碼的世界充滿未知，\n" +
			"有時我們會迷失方向。\n" +
			"但這正是探索的樂趣，\n" +
			"每一次嘗試都是成長。",
		novel: "在數位世界的某個角落，一個神秘的專案等待著被發現。" +
			"雖然這次的探索遇到了困難，但勇敢的開發者們永遠不會放棄尋找真理的腳步。",
	}
)

// fallbackSaga repo_url 原样回显
func fallbackSaga(repoURL string, lang model.Language) model.LiteraryWorkResponse {
	fb := chineseSagaFallback
	if lang.IsEnglish() {
		fb = englishSagaFallback
	}
	return model.LiteraryWorkResponse{
		RepoURL:       repoURL,
		InsightReport: fmt.Sprintf(fb.insightFormat, repoURL),
		Poem:          fb.poem,
		Novel:         fb.novel,
	}
}

var (
	englishChatFallbacks = []string{
		"Sorry, the Repo Saga Assistant service is temporarily unavailable. Please try again later. In the meantime, feel free to explore the platform's features!",
		"I'm experiencing some technical difficulties right now. Please try again in a moment. You can continue using the main repository transformation features.",
		"The assistant service is currently offline. Please try again later. The core Repo Saga Engine functionality remains available for your use.",
	}

	chineseChatFallbacks = []string{
		"抱歉，Repo Saga 助手服務暫時無法使用，請稍後再試。在等待期間，歡迎繼續探索平台的其他功能！",
		"我目前遇到一些技術問題，請稍後再試。你可以繼續使用主要的倉庫轉化功能。",
		"助手服務目前離線中，請稍後再試。Repo Saga Engine 的核心功能仍然可以正常使用。",
	}
)

func chatFallbacks(lang model.Language) []string {
	if lang.IsEnglish() {
		return englishChatFallbacks
	}
	return chineseChatFallbacks
}

// fallbackChat 从三条固定回复中均匀随机选一条
func fallbackChat(lang model.Language) string {
	options := chatFallbacks(lang)
	return options[rand.Intn(len(options))]
}
