// Package telegramutil holds small helpers for the Telegram transport:
// MarkdownV2 escaping, message splitting and the document cache dir.
package telegramutil

import "strings"

// MaxMessageLen is Telegram's hard limit on message text.
const MaxMessageLen = 4096

var markdownV2Escapes = map[byte]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	']':  true,
	'(':  true,
	')':  true,
	'~':  true,
	'`':  true,
	'>':  true,
	'#':  true,
	'+':  true,
	'-':  true,
	'=':  true,
	'|':  true,
	'{':  true,
	'}':  true,
	'.':  true,
	'!':  true,
}

// EscapeMarkdownV2 escapes the characters MarkdownV2 reserves.
func EscapeMarkdownV2(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if markdownV2Escapes[ch] {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// SplitMessage breaks text into chunks within Telegram's length limit,
// preferring newline and then space boundaries.
func SplitMessage(text string) []string {
	if len(text) <= MaxMessageLen {
		return []string{text}
	}
	var chunks []string
	for len(text) > MaxMessageLen {
		cut := strings.LastIndexByte(text[:MaxMessageLen], '\n')
		if cut < MaxMessageLen/2 {
			if sp := strings.LastIndexByte(text[:MaxMessageLen], ' '); sp >= MaxMessageLen/2 {
				cut = sp
			} else {
				cut = MaxMessageLen
			}
		}
		chunks = append(chunks, strings.TrimRight(text[:cut], " \n"))
		text = strings.TrimLeft(text[cut:], " \n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
