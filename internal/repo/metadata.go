package repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"repo-saga-backend/internal/utils"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

var ErrUnknownRepository = errors.New("repository identifier is unknown")

// Metadata 是 GitHub 仓库的公开描述信息，只作为提示词中的补充线索
type Metadata struct {
	FullName    string
	Description string
	Language    string
	Stars       int
	Topics      []string
}

// MetadataClient 通过 GitHub REST API 读取仓库元数据（不读取任何仓库文件）
type MetadataClient struct {
	client *github.Client
}

// NewMetadataClient 创建元数据客户端。token 为空时匿名访问（速率限制更低）；baseURL 为空时使用 api.github.com。
func NewMetadataClient(token, baseURL string, timeout time.Duration) (*MetadataClient, error) {
	httpClient := utils.NewHTTPClient(timeout, func(base http.RoundTripper) http.RoundTripper {
		if token == "" {
			return base
		}
		return &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	})

	client := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = u
	}

	return &MetadataClient{client: client}, nil
}

// Describe 查询仓库描述、主要语言、star 数与 topics
func (c *MetadataClient) Describe(ctx context.Context, id Identifier) (*Metadata, error) {
	if id.IsUnknown() {
		return nil, ErrUnknownRepository
	}

	r, _, err := c.client.Repositories.Get(ctx, id.Owner, id.Name)
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", id, err)
	}

	return &Metadata{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Topics:      r.Topics,
	}, nil
}
