package collector

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsMostlyChinese(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"国务院发布新政策", true},
		{"Breaking news from overseas", false},
		{"", true},
		{"Go 语言 发布 新版本", true},
		{"AI chip", false},
	}

	for _, tc := range cases {
		if got := isMostlyChinese(tc.text); got != tc.want {
			t.Fatalf("isMostlyChinese(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestToChineseSkipsChineseText(t *testing.T) {
	// 已是中文的标题不应触发任何网络请求，原样返回
	const title = "央行发布最新货币政策报告"
	if got := toChinese(zap.NewNop(), title); got != title {
		t.Fatalf("toChinese(%q) = %q, want unchanged", title, got)
	}
}

func TestSourceLang(t *testing.T) {
	if got := sourceLang("こんにちは"); got != "ja" {
		t.Fatalf("sourceLang = %q, want ja", got)
	}
	if got := sourceLang("hello world"); got != "en" {
		t.Fatalf("sourceLang = %q, want en", got)
	}
}
