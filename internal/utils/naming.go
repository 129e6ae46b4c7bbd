package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// initialisms 连续大写中可以单独成词的缩略词，用于切分 HTTPURL、URLID 这类标识符
var initialisms = []string{
	"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS",
	"ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP",
	"SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM",
	"XML", "XSRF", "XSS",
}

// Words 把标识符拆成单词，保留原始大小写
//
//	userRestrictions -> user Restrictions
//	HTTPServerHandler -> HTTP Server Handler
//	HappyBodyIDs -> Happy Body IDs
//	SHA256Hash -> SHA256 Hash
func Words(name string) []string {
	var words []string
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, w := range splitCase([]rune(seg)) {
			words = append(words, splitInitialisms(w)...)
		}
	}
	return words
}

// splitCase 按大小写变化切分：小写或数字后的大写开始新词，
// 连续大写后跟小写时最后一个大写属于下一个词（复数 s 除外）
func splitCase(r []rune) []string {
	var words []string
	start := 0
	for i := 1; i < len(r); i++ {
		prev, cur := r[i-1], r[i]
		var split bool
		switch {
		case !unicode.IsUpper(cur):
		case unicode.IsLower(prev) || unicode.IsDigit(prev):
			split = true
		case i+1 < len(r) && unicode.IsLower(r[i+1]):
			split = !pluralAt(r, i+1)
		}
		if split {
			words = append(words, string(r[start:i]))
			start = i
		}
	}
	return append(words, string(r[start:]))
}

// pluralAt r[i] 是否为缩略词后面的复数 s，如 IDs
func pluralAt(r []rune, i int) bool {
	return r[i] == 's' && (i+1 == len(r) || !unicode.IsLower(r[i+1]))
}

// splitInitialisms 把全大写的词按缩略词表切开，如 URLID -> URL ID
// 不在表中的部分保持相连
func splitInitialisms(w string) []string {
	upper, plural := strings.CutSuffix(w, "s")
	if !plural {
		upper = w
	}
	if upper == "" || strings.ToUpper(upper) != upper {
		return []string{w}
	}

	var parts []string
	pending := 0
	for i := 0; i < len(upper); {
		n := longestInitialism(upper[i:])
		if n == 0 {
			i++
			continue
		}
		if pending < i {
			parts = append(parts, upper[pending:i])
		}
		parts = append(parts, upper[i:i+n])
		i += n
		pending = i
	}
	if pending < len(upper) {
		parts = append(parts, upper[pending:])
	}
	if plural {
		parts[len(parts)-1] += "s"
	}
	return parts
}

func longestInitialism(s string) int {
	best := 0
	for _, ini := range initialisms {
		if len(ini) > best && strings.HasPrefix(s, ini) {
			best = len(ini)
		}
	}
	return best
}

func lowerWords(name string) []string {
	words := Words(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// cases.Caser 不是并发安全的，每次新建
func title(w string) string {
	return cases.Title(language.Und).String(w)
}

// ToLowerCase 全部小写: HTTPClient -> httpclient
func ToLowerCase(name string) string {
	return cases.Lower(language.Und).String(name)
}

// ToUpperCase 全部大写: HTTPClient -> HTTPCLIENT
func ToUpperCase(name string) string {
	return cases.Upper(language.Und).String(name)
}

// ToSnakeCase HTTPClient -> http_client
func ToSnakeCase(name string) string {
	return strings.Join(lowerWords(name), "_")
}

// ToScreamingSnakeCase HTTPClient -> HTTP_CLIENT
func ToScreamingSnakeCase(name string) string {
	return ToUpperCase(ToSnakeCase(name))
}

// ToPascalCase HTTPClient -> HttpClient
func ToPascalCase(name string) string {
	var sb strings.Builder
	for _, w := range lowerWords(name) {
		sb.WriteString(title(w))
	}
	return sb.String()
}

// ToCamelCase HTTPClient -> httpClient
func ToCamelCase(name string) string {
	words := lowerWords(name)
	for i := 1; i < len(words); i++ {
		words[i] = title(words[i])
	}
	return strings.Join(words, "")
}
