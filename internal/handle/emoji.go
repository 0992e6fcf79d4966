package handle

import "github.com/rivo/uniseg"

// Yat handles are sequences of one to five emoji.
const (
	minYatEmoji = 1
	maxYatEmoji = 5
)

const (
	zeroWidthJoiner = '\u200d'
	keycapCombining = '\u20e3'
)

// IsYatHandle reports whether s is a plausible Yat: 1-5 emoji and nothing else.
func IsYatHandle(s string) bool {
	n, ok := countEmoji(s)
	return ok && n >= minYatEmoji && n <= maxYatEmoji
}

// countEmoji counts the grapheme clusters in s. ok is false if any cluster
// is not an emoji.
func countEmoji(s string) (n int, ok bool) {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if !isEmojiCluster(g.Runes()) {
			return 0, false
		}
		n++
	}
	return n, true
}

// isEmojiCluster reports whether a single grapheme cluster is an emoji: an
// emoji base or flag, decorated by modifiers and joined to further emoji.
func isEmojiCluster(runes []rune) bool {
	if len(runes) == 0 || runes[len(runes)-1] == zeroWidthJoiner {
		return false
	}
	if !isEmojiBase(runes[0]) && !isRegionalIndicator(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		switch {
		case r == zeroWidthJoiner, isEmojiModifier(r), isEmojiBase(r), isRegionalIndicator(r):
		default:
			return false
		}
	}
	return true
}

// isEmojiModifier matches code points that only decorate a preceding emoji.
func isEmojiModifier(r rune) bool {
	switch {
	case r == 0xfe0e, r == 0xfe0f: // variation selectors
		return true
	case r >= 0x1f3fb && r <= 0x1f3ff: // skin tones
		return true
	case r >= 0xe0020 && r <= 0xe007f: // tag sequences
		return true
	case r == keycapCombining:
		return true
	}
	return false
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1f1e6 && r <= 0x1f1ff
}

// isEmojiBase matches the blocks that hold emoji presentation characters.
func isEmojiBase(r rune) bool {
	switch {
	case r >= 0x1f000 && r <= 0x1faff: // pictographs, emoticons, transport, symbols
		return true
	case r >= 0x2600 && r <= 0x27bf: // misc symbols, dingbats
		return true
	case r >= 0x2300 && r <= 0x23ff: // misc technical
		return true
	case r >= 0x2b00 && r <= 0x2bff: // arrows, stars
		return true
	case r >= 0x2190 && r <= 0x21ff: // arrows
		return true
	case r >= 0x25a0 && r <= 0x25ff: // geometric shapes
		return true
	case r == 0x00a9, r == 0x00ae, r == 0x203c, r == 0x2049, r == 0x2122, r == 0x2139,
		r == 0x2934, r == 0x2935, r == 0x3030, r == 0x303d, r == 0x3297, r == 0x3299:
		return true
	}
	return false
}
