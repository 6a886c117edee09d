package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"repo-saga-backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	result  *model.SagaResult
	err     error
	gotURL  string
	presets model.GenerationPresets
	calls   int
}

func (s *stubGenerator) Generate(_ context.Context, repoURL string, presets model.GenerationPresets) (*model.SagaResult, error) {
	s.calls++
	s.gotURL = repoURL
	s.presets = presets
	return s.result, s.err
}

type stubReplier struct {
	reply   string
	err     error
	message string
	history []model.ChatMessage
	lang    model.Language
}

func (s *stubReplier) Reply(_ context.Context, message string, history []model.ChatMessage, lang model.Language) (string, error) {
	s.message = message
	s.history = history
	s.lang = lang
	return s.reply, s.err
}

func newRouter(gen SagaGenerator, replier ChatReplier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	sagaHandler := NewSagaHandler(gen)
	chatHandler := NewChatHandler(replier)
	router.GET("/", sagaHandler.Root)
	router.GET("/example", sagaHandler.Example)
	router.GET("/health", sagaHandler.Health)
	router.POST("/generate", sagaHandler.Generate)
	router.POST("/chat", chatHandler.Chat)
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestRoot(t *testing.T) {
	w := do(t, newRouter(&stubGenerator{}, &stubReplier{}), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Welcome to Repo Saga Engine API"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(&stubGenerator{}, &stubReplier{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotZero(t, body["timestamp"])
}

func TestExample(t *testing.T) {
	gen := &stubGenerator{err: errors.New("must not be called")}
	router := newRouter(gen, &stubReplier{})

	first := do(t, router, http.MethodGet, "/example", nil)
	second := do(t, router, http.MethodGet, "/example", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, exampleSaga, first.Body.Bytes())
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Contains(t, first.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, 0, gen.calls)

	resp := decode[model.LiteraryWorkResponse](t, first)
	assert.Equal(t, "https://github.com/tiangolo/fastapi", resp.RepoURL)
	assert.NotEmpty(t, resp.InsightReport)
	assert.NotEmpty(t, resp.Poem)
	assert.NotEmpty(t, resp.Novel)
}

func TestGenerate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gen := &stubGenerator{result: &model.SagaResult{InsightReport: "insight", Poem: "poem", Novel: "novel"}}
		w := do(t, newRouter(gen, &stubReplier{}), http.MethodPost, "/generate", map[string]string{
			"url":        "https://github.com/a/b",
			"poem_style": "haiku",
			"tone":       "humorous",
			"locale":     "en-GB",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.LiteraryWorkResponse{
			RepoURL:       "https://github.com/a/b",
			InsightReport: "insight",
			Poem:          "poem",
			Novel:         "novel",
		}, decode[model.LiteraryWorkResponse](t, w))
		assert.Equal(t, model.GenerationPresets{
			PoemStyle: "haiku",
			Tone:      "humorous",
			Language:  model.LanguageEnglish,
		}, gen.presets)
	})

	failures := []struct {
		name string
		err  error
	}{
		{"config error", model.ErrMissingAPIKey},
		{"transport error", &model.TransportError{StatusCode: 429, Body: "slow down"}},
		{"empty content", model.ErrEmptyContent},
		{"other", errors.New("boom")},
	}
	for _, tc := range failures {
		t.Run(tc.name+" yields the english fallback", func(t *testing.T) {
			url := "https://github.com/a/b?tab=readme&x=<y>"
			gen := &stubGenerator{err: tc.err}
			w := do(t, newRouter(gen, &stubReplier{}), http.MethodPost, "/generate", map[string]string{
				"url":  url,
				"lang": "en",
			})

			assert.Equal(t, http.StatusOK, w.Code)
			resp := decode[model.LiteraryWorkResponse](t, w)
			assert.Equal(t, fallbackSaga(url, model.LanguageEnglish), resp)
			assert.Equal(t, url, resp.RepoURL)
			assert.Equal(t, "Sorry, unable to analyze project "+url+". Please check if the URL is correct.", resp.InsightReport)
			assert.NotContains(t, w.Body.String(), "slow down")
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}

	t.Run("fallback is chinese without english hints", func(t *testing.T) {
		gen := &stubGenerator{err: model.ErrEmptyContent}
		w := do(t, newRouter(gen, &stubReplier{}), http.MethodPost, "/generate", map[string]string{
			"url":    "https://github.com/a/b",
			"lang":   "EN",
			"locale": "zh-TW",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[model.LiteraryWorkResponse](t, w)
		assert.Equal(t, "抱歉，無法分析專案 https://github.com/a/b。請檢查 URL 是否正確。", resp.InsightReport)
		assert.Equal(t, chineseSagaFallback.poem, resp.Poem)
		assert.Equal(t, chineseSagaFallback.novel, resp.Novel)
		assert.Equal(t, model.LanguageTraditionalChinese, gen.presets.Language)
	})

	t.Run("fallback is identical across failures", func(t *testing.T) {
		gen := &stubGenerator{err: model.ErrEmptyContent}
		router := newRouter(gen, &stubReplier{})
		body := map[string]string{"url": "https://github.com/a/b"}

		first := do(t, router, http.MethodPost, "/generate", body)
		second := do(t, router, http.MethodPost, "/generate", body)
		assert.Equal(t, first.Body.String(), second.Body.String())
	})

	t.Run("empty url is accepted", func(t *testing.T) {
		gen := &stubGenerator{result: &model.SagaResult{InsightReport: "i", Poem: "p", Novel: "n"}}
		w := do(t, newRouter(gen, &stubReplier{}), http.MethodPost, "/generate", `{"url":""}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, gen.calls)
		assert.Equal(t, "", gen.gotURL)
		assert.Equal(t, "", decode[model.LiteraryWorkResponse](t, w).RepoURL)
	})

	t.Run("empty url falls back with 200", func(t *testing.T) {
		gen := &stubGenerator{err: model.ErrEmptyContent}
		w := do(t, newRouter(gen, &stubReplier{}), http.MethodPost, "/generate", `{"url":"","lang":"en"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, fallbackSaga("", model.LanguageEnglish), decode[model.LiteraryWorkResponse](t, w))
	})

	t.Run("missing url is rejected", func(t *testing.T) {
		gen := &stubGenerator{}
		w := do(t, newRouter(gen, &stubReplier{}), http.MethodPost, "/generate", `{"lang":"en"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, gen.calls)
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		w := do(t, newRouter(&stubGenerator{}, &stubReplier{}), http.MethodPost, "/generate", `{"url":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		replier := &stubReplier{reply: "Try a well-documented repository."}
		w := do(t, newRouter(&stubGenerator{}, replier), http.MethodPost, "/chat", map[string]any{
			"message": "Any tips?",
			"conversation_history": []map[string]string{
				{"role": "user", "content": "hello"},
				{"role": "assistant", "content": "hi"},
			},
			"lang": "en",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Try a well-documented repository.", decode[model.ChatResponse](t, w).Response)
		assert.Equal(t, "Any tips?", replier.message)
		assert.Equal(t, []model.ChatMessage{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
		}, replier.history)
		assert.Equal(t, model.LanguageEnglish, replier.lang)
	})

	t.Run("history defaults to empty", func(t *testing.T) {
		replier := &stubReplier{reply: "好的"}
		w := do(t, newRouter(&stubGenerator{}, replier), http.MethodPost, "/chat", `{"message":"你好"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, replier.history)
		assert.Equal(t, model.LanguageTraditionalChinese, replier.lang)
	})

	langs := []struct {
		name      string
		body      map[string]string
		fallbacks []string
	}{
		{"english", map[string]string{"message": "hi", "locale": "en-US"}, englishChatFallbacks},
		{"chinese", map[string]string{"message": "hi", "lang": "zh-TW"}, chineseChatFallbacks},
	}
	for _, tc := range langs {
		t.Run(tc.name+" fallback is drawn from the fixed set", func(t *testing.T) {
			replier := &stubReplier{err: &model.TransportError{StatusCode: 500, Body: "internal"}}
			router := newRouter(&stubGenerator{}, replier)

			for i := 0; i < 30; i++ {
				w := do(t, router, http.MethodPost, "/chat", tc.body)
				require.Equal(t, http.StatusOK, w.Code)
				assert.Contains(t, tc.fallbacks, decode[model.ChatResponse](t, w).Response)
			}
		})
	}

	t.Run("config error still answers 200", func(t *testing.T) {
		replier := &stubReplier{err: model.ErrMissingAPIKey}
		w := do(t, newRouter(&stubGenerator{}, replier), http.MethodPost, "/chat", map[string]string{"message": "hi"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, chineseChatFallbacks, decode[model.ChatResponse](t, w).Response)
	})

	t.Run("empty message is forwarded", func(t *testing.T) {
		replier := &stubReplier{reply: "How can I help?"}
		w := do(t, newRouter(&stubGenerator{}, replier), http.MethodPost, "/chat", `{"message":""}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", replier.message)
		assert.Equal(t, "How can I help?", decode[model.ChatResponse](t, w).Response)
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		w := do(t, newRouter(&stubGenerator{}, &stubReplier{}), http.MethodPost, "/chat", `{"lang":"en"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFallbackChat_CoversSet(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		seen[fallbackChat(model.LanguageEnglish)] = true
	}
	assert.Len(t, seen, 3)
}
