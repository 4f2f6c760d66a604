package parser

import (
	"regexp"
	"strings"
)

// languageNames maps upstream language codes to display names. Codes that
// aren't listed here but look ISO-ish (2-3 letters) get a capitalized
// passthrough in LanguageCodeToName.
var languageNames = map[string]string{
	"af": "Afrikaans", "am": "Amharic", "ar": "Arabic", "az": "Azerbaijani",
	"be": "Belarusian", "bg": "Bulgarian", "bn": "Bengali", "bs": "Bosnian",
	"ca": "Catalan", "ceb": "Cebuano", "co": "Corsican", "cs": "Czech", "cy": "Welsh",
	"da": "Danish", "de": "German", "el": "Greek", "en": "English", "eo": "Esperanto",
	"es": "Spanish", "et": "Estonian", "eu": "Basque", "fa": "Persian", "fi": "Finnish",
	"fr": "French", "hv": "High Valyrian", "hw": "Hawaiian", "ga": "Irish",
	"gd": "Scottish Gaelic", "gl": "Galician", "gn": "Guarani", "gu": "Gujarati",
	"hk": "Cantonese", "ht": "Haitian Creole", "kl": "Klingon", "nb": "Norwegian Bokmål",
	"nv": "Navajo", "he": "Hebrew", "hi": "Hindi", "hr": "Croatian", "hu": "Hungarian",
	"hy": "Armenian", "id": "Indonesian", "ig": "Igbo", "is": "Icelandic", "it": "Italian",
	"ja": "Japanese", "ko": "Korean", "ku": "Kurdish", "la": "Latin", "lb": "Luxembourgish",
	"lt": "Lithuanian", "lv": "Latvian", "mg": "Malagasy", "mi": "Maori", "mk": "Macedonian",
	"ml": "Malayalam", "mn": "Mongolian", "mr": "Marathi", "ms": "Malay", "mt": "Maltese",
	"my": "Burmese", "ne": "Nepali", "nl": "Dutch", "no": "Norwegian", "ny": "Chichewa",
	"pl": "Polish", "pt": "Portuguese", "qu": "Quechua", "ro": "Romanian", "ru": "Russian",
	"sh": "Serbo-Croatian", "si": "Sinhala", "sk": "Slovak", "sr": "Serbian", "sv": "Swedish",
	"sw": "Swahili", "ta": "Tamil", "te": "Telugu", "th": "Thai", "tl": "Tagalog",
	"tr": "Turkish", "uk": "Ukrainian", "ur": "Urdu", "uz": "Uzbek", "vi": "Vietnamese",
	"yi": "Yiddish", "xh": "Xhosa", "zh": "Chinese", "zhhans": "Chinese (Simplified)",
	"zhhant": "Chinese (Traditional)", "zu": "Zulu",
}

// unitWords lists the localized words for "unit(s)/lesson(s)" that appear in
// detail-page section headings across the source's language variants. Kept as
// flat data so new variants are a one-line change.
var unitWords = []string{
	"units?", "unidades?", "unidade?s?", "unités?", "unità", "einheiten",
	"lektion(?:en)?", "lessons?", "leçons?", "lektioner",
	"разделы", "юнитов", "уроков?", "занятий",
	"ders", "درس", "课程", "課", "レッスン", "単元", "단원", "레슨",
}

var (
	nonAlphaRe     = regexp.MustCompile(`[^a-z]`)
	cefrLevelRe    = regexp.MustCompile(`(?i)([A-C][0-3](?:\+|-)?)`)
	parentheticRe  = regexp.MustCompile(`\([^)]*\)`)
	trailingForRe  = regexp.MustCompile(`(?i)for.+$`)
	trailingFromRe = regexp.MustCompile(`(?i)from.+$`)
	labelSplitRe   = regexp.MustCompile(`[\s/_-]+`)
	levelPrefixRe  = regexp.MustCompile(`(?i)(CEFR\s*|nivel\s*|niveau\s*|livello\s*|nivå\s*|ระดับ\s*)`)
)

// NormalizeLanguageCode lowercases a code and strips anything non-alphabetic.
// Returns "" if nothing survives.
func NormalizeLanguageCode(code string) string {
	return nonAlphaRe.ReplaceAllString(strings.ToLower(code), "")
}

// LanguageCodeToName resolves a language code to a display name. Unknown
// 2-3 letter codes are capitalized as-is; anything else yields "".
func LanguageCodeToName(code string) string {
	normalized := NormalizeLanguageCode(code)
	if normalized == "" {
		return ""
	}
	if name, ok := languageNames[normalized]; ok {
		return name
	}
	if len(normalized) == 2 || len(normalized) == 3 {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}
	return ""
}

// HumanizeLanguageLabel turns raw catalog cell text into a display name:
// parentheticals and trailing "for ..."/"from ..." qualifiers are dropped,
// known codes resolved through the table, and the remainder title-cased.
func HumanizeLanguageLabel(raw string) string {
	if raw == "" {
		return ""
	}
	trimmed := parentheticRe.ReplaceAllString(raw, " ")
	trimmed = trailingForRe.ReplaceAllString(trimmed, " ")
	trimmed = trailingFromRe.ReplaceAllString(trimmed, " ")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return ""
	}
	if override := LanguageCodeToName(strings.ToLower(trimmed)); override != "" {
		return override
	}
	words := labelSplitRe.Split(trimmed, -1)
	var parts []string
	for _, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(strings.ToLower(word))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		parts = append(parts, string(runes))
	}
	return strings.Join(parts, " ")
}

// NormalizeLevel extracts a short CEFR code (A1..C3, optional +/-) from free
// text. Falls back to stripping localized "level" prefixes and uppercasing.
func NormalizeLevel(level string) string {
	if level == "" {
		return ""
	}
	if m := cefrLevelRe.FindStringSubmatch(level); m != nil {
		return strings.ToUpper(m[1])
	}
	cleaned := strings.TrimSpace(levelPrefixRe.ReplaceAllString(level, ""))
	return strings.ToUpper(cleaned)
}
