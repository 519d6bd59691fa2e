package language

// Script ranges checked in order; ties break toward the earlier entry.
var scripts = []struct {
	code   string
	lo, hi rune
}{
	{"hi", 0x0900, 0x097F}, // Devanagari
	{"ta", 0x0B80, 0x0BFF}, // Tamil
	{"te", 0x0C00, 0x0C7F}, // Telugu
}

// A couple of stray characters must not flip the language of an otherwise
// Latin-script message.
const minScriptRunes = 3

var names = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
}

// Name returns the English name of a detected language code, for use in
// prompts. Unknown codes read as English.
func Name(code string) string {
	if n, ok := names[code]; ok {
		return n
	}
	return "English"
}

// Detect guesses the dominant language of text from its script, defaulting
// to English. It drives the reply-in-the-same-language prompt instruction.
func Detect(text string) string {
	counts := make([]int, len(scripts))
	for _, r := range text {
		for i, s := range scripts {
			if r >= s.lo && r <= s.hi {
				counts[i]++
				break
			}
		}
	}

	best, bestN := "en", 0
	for i, s := range scripts {
		if counts[i] >= minScriptRunes && counts[i] > bestN {
			best, bestN = s.code, counts[i]
		}
	}
	return best
}
