// Package repo 从 GitHub 仓库 URL 中识别 owner/name，并可选地查询仓库元数据。
package repo

import (
	"regexp"
	"strings"
)

// Unknown 是无法识别 URL 时 owner 与 name 的取值
const Unknown = "unknown"

// Identifier 是一次请求内由 URL 推导出的仓库标识
type Identifier struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (id Identifier) String() string {
	return id.Owner + "/" + id.Name
}

// IsUnknown 表示 URL 未匹配 github.com/<owner>/<name>
func (id Identifier) IsUnknown() bool {
	return id.Owner == Unknown && id.Name == Unknown
}

// name 段在 ? 与 # 处截断，查询串和片段不会混入仓库名
var githubRepoPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

// Extract 解析 URL 中第一次出现的 github.com/<owner>/<name>，去掉 name 末尾的 .git。
// 不匹配时返回 unknown/unknown，不会失败，也不做任何网络请求。
func Extract(rawURL string) Identifier {
	m := githubRepoPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return Identifier{Owner: Unknown, Name: Unknown}
	}

	name := strings.TrimSuffix(m[2], ".git")
	if name == "" {
		return Identifier{Owner: Unknown, Name: Unknown}
	}

	return Identifier{Owner: m[1], Name: name}
}
