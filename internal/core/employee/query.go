package employee

import "strings"

// SearchKind は検索語の分類結果です。
type SearchKind string

const (
	SearchAll   SearchKind = "all"
	SearchName  SearchKind = "name"
	SearchTitle SearchKind = "title"
)

var titleKeywords = []string{"developer", "manager", "analyst", "engineer"}

// IsTitleSearch は検索語が既知の役職キーワードのいずれかに部分文字列として含まれるかを返します。
// "man" のような語も manager に一致するため役職検索として扱われます。
func IsTitleSearch(term string) bool {
	if strings.TrimSpace(term) == "" {
		return false
	}
	lower := strings.ToLower(term)
	for _, keyword := range titleKeywords {
		if strings.Contains(keyword, lower) {
			return true
		}
	}
	return false
}

// ClassifySearch は検索語を全件・氏名・役職のいずれかに振り分けます。
func ClassifySearch(term string) SearchKind {
	switch {
	case strings.TrimSpace(term) == "":
		return SearchAll
	case IsTitleSearch(term):
		return SearchTitle
	default:
		return SearchName
	}
}
