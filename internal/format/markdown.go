// Package format contains text helpers for Telegram output.
package format

import "regexp"

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var mdV2Pattern = regexp.MustCompile("([" + regexp.QuoteMeta(mdV2Specials) + "])")

// EscapeMarkdownV2 escapes every MarkdownV2 metacharacter in text so it can
// be embedded verbatim in a MarkdownV2 message. Text without metacharacters
// passes through unchanged.
func EscapeMarkdownV2(text string) string {
	return mdV2Pattern.ReplaceAllString(text, `\$1`)
}
