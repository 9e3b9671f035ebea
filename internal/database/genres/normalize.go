package genres

import "strings"

// synonyms maps lowercased, whitespace-collapsed spellings to their canonical
// (still lowercase) form. Extend as new near-duplicates show up in imports.
var synonyms = map[string]string{
	"sci-fi":          "science fiction",
	"scifi":           "science fiction",
	"sci fi":          "science fiction",
	"sf":              "science fiction",
	"ya":              "young adult",
	"non-fiction":     "non-fiction",
	"nonfiction":      "non-fiction",
	"non fiction":     "non-fiction",
	"bio":             "biography",
	"biographies":     "biography",
	"self help":       "self-help",
	"selfhelp":        "self-help",
	"historical fic":  "historical fiction",
	"graphic novels":  "graphic novel",
	"comics":          "graphic novel",
	"lit fic":         "literary fiction",
	"true-crime":      "true crime",
	"short story":     "short stories",
}

// minorWords stay lowercase in title case unless they lead the name.
var minorWords = map[string]bool{
	"of": true, "and": true, "the": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "&": true,
}

// Normalize canonicalizes a free-text genre name: whitespace is collapsed,
// known synonyms are folded to one spelling, and the result is title-cased
// with minor words kept lowercase. The normalized name is the dedup key, so
// Normalize must be idempotent.
func Normalize(name string) string {
	lowered := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if lowered == "" {
		return ""
	}

	if canonical, ok := synonyms[lowered]; ok {
		lowered = canonical
	}

	words := strings.Split(lowered, " ")
	for i, word := range words {
		if i > 0 && minorWords[word] {
			continue
		}
		words[i] = titleWord(word)
	}
	return strings.Join(words, " ")
}

// titleWord upper-cases the first letter, handling hyphenated compounds like
// "non-fiction" -> "Non-Fiction".
func titleWord(word string) string {
	parts := strings.Split(word, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "-")
}
