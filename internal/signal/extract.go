package signal

import (
	"strings"
	"unicode"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

// Emoji category table. Categories line up with the emoji_categories sets
// referenced by synthesis rules.
var emojiCategories = map[string]string{
	"😀": "positive", "😄": "positive", "😁": "positive", "🙂": "positive",
	"😊": "positive", "😃": "positive", "😂": "positive", "🤣": "positive",
	"🎉": "positive", "✨": "positive",
	"❤": "love", "❤️": "love", "💕": "love", "💖": "love", "😍": "love",
	"🥰": "love", "😘": "love",
	"😢": "sad", "😭": "sad", "💔": "sad", "😞": "sad", "☹": "sad", "🙁": "sad",
	"😡": "anger", "🤬": "anger", "😠": "anger", "👿": "anger",
	"😱": "fear", "😨": "fear", "😰": "fear", "😟": "fear", "😧": "fear",
	"🤢": "disgust", "🤮": "disgust",
	"😮": "surprise", "😲": "surprise", "😯": "surprise",
	"🔥": "intense", "💥": "intense", "💯": "intense", "‼": "intense", "‼️": "intense",
	"🙏": "gratitude",
}

var amplifierTokens = map[string]struct{}{
	"very": {}, "really": {}, "so": {}, "extremely": {}, "absolutely": {},
	"totally": {}, "incredibly": {}, "super": {}, "completely": {}, "utterly": {},
}

var negatorTokens = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "don't": {}, "dont": {}, "can't": {},
	"cant": {}, "won't": {}, "wont": {}, "isn't": {}, "isnt": {}, "wasn't": {},
	"wasnt": {}, "didn't": {}, "didnt": {},
}

// Literal anger tokens used to disambiguate negative polarity between anger
// and sadness during fusion.
var angerCueTokens = map[string]struct{}{
	"angry": {}, "anger": {}, "furious": {}, "hate": {}, "hatred": {},
	"mad": {}, "pissed": {}, "rage": {}, "outraged": {}, "livid": {},
}

// Extract pulls emoji, punctuation patterns, and amplifier/negator tokens
// out of raw message text. It never fails; empty text yields zero signals.
func Extract(text string) domain.RawSignals {
	sig := domain.RawSignals{
		EmojiCategories: map[string]int{},
		Punctuation:     map[string]int{},
	}
	if strings.TrimSpace(text) == "" {
		return sig
	}

	for _, r := range text {
		s := string(r)
		if cat, ok := emojiCategories[s]; ok {
			sig.Emojis = append(sig.Emojis, s)
			sig.EmojiCategories[cat]++
		}
	}

	exclaims := strings.Count(text, "!") + strings.Count(text, "！")
	questions := strings.Count(text, "?") + strings.Count(text, "？")
	if exclaims > 0 {
		sig.Punctuation["exclamations"] = exclaims
	}
	if questions > 0 {
		sig.Punctuation["questions"] = questions
	}
	if n := strings.Count(text, "...") + strings.Count(text, "…"); n > 0 {
		sig.Punctuation["ellipses"] = n
	}
	if n := countRepeatedPunct(text); n > 0 {
		sig.Punctuation["repeated_punct"] = n
	}
	if n := countCapsWords(text); n > 0 {
		sig.Punctuation["caps_words"] = n
	}

	for _, tok := range Tokenize(text) {
		if _, ok := amplifierTokens[tok]; ok {
			sig.Amplifiers = append(sig.Amplifiers, tok)
		}
		if _, ok := negatorTokens[tok]; ok {
			sig.Negators = append(sig.Negators, tok)
		}
		if _, ok := angerCueTokens[tok]; ok {
			sig.HasAngerCue = true
		}
	}
	return sig
}

// Tokenize lowercases and splits text on anything that is not a letter,
// digit, or apostrophe.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// runs of 2+ identical terminal punctuation, e.g. "!!" or "??".
func countRepeatedPunct(text string) int {
	count := 0
	runLen := 1
	var prev rune
	for _, r := range text {
		if r == prev && (r == '!' || r == '?' || r == '.') {
			runLen++
			if runLen == 2 {
				count++
			}
		} else {
			runLen = 1
		}
		prev = r
	}
	return count
}

func countCapsWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		letters := 0
		uppers := 0
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					uppers++
				}
			}
		}
		if letters >= 3 && uppers == letters {
			count++
		}
	}
	return count
}
