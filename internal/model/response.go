package model

// SagaResult 是一个仓库对应的洞察报告、诗歌与小说
type SagaResult struct {
	InsightReport string
	Poem          string
	Novel         string
}

// LiteraryWorkResponse 是 POST /generate 与 GET /example 的响应体
type LiteraryWorkResponse struct {
	RepoURL       string `json:"repo_url"`
	InsightReport string `json:"insight_report"`
	Poem          string `json:"poem"`
	Novel         string `json:"novel"`
}

func NewLiteraryWorkResponse(repoURL string, saga *SagaResult) LiteraryWorkResponse {
	return LiteraryWorkResponse{
		RepoURL:       repoURL,
		InsightReport: saga.InsightReport,
		Poem:          saga.Poem,
		Novel:         saga.Novel,
	}
}

// ChatResponse 是 POST /chat 的响应体
type ChatResponse struct {
	Response string `json:"response"`
}
