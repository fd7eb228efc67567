package tokenizer

import "strings"

// stem reduces word to its Porter 1980 stem. Words of length <= 2 are
// returned unchanged, per the algorithm's own short-word exemption.
func stem(word string) string {
	if len(word) <= 2 {
		return word
	}
	w := []byte(word)
	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return string(w)
}

// isVowel reports whether the byte at index i of w is a vowel. a, e, i, o
// and u always are; y is a vowel precisely when the preceding letter is a
// consonant (so never at index 0).
func isVowel(w []byte, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	case 'y':
		if i == 0 {
			return false
		}
		return !isVowel(w, i-1)
	default:
		return false
	}
}

// measure computes m, the number of VC sequences in w: the count of
// vowel-group -> consonant-group transitions reading left to right.
func measure(w []byte) int {
	m := 0
	i := 0
	n := len(w)
	// skip leading consonant sequence
	for i < n && !isVowel(w, i) {
		i++
	}
	for i < n {
		// skip vowel sequence
		for i < n && isVowel(w, i) {
			i++
		}
		if i >= n {
			break
		}
		// skip consonant sequence
		for i < n && !isVowel(w, i) {
			i++
		}
		m++
	}
	return m
}

// containsVowel reports whether w has at least one vowel anywhere.
func containsVowel(w []byte) bool {
	for i := range w {
		if isVowel(w, i) {
			return true
		}
	}
	return false
}

// endsDoubleConsonant reports whether the final two letters of w are an identical
// double consonant.
func endsDoubleConsonant(w []byte) bool {
	n := len(w)
	if n < 2 {
		return false
	}
	if w[n-1] != w[n-2] {
		return false
	}
	return !isVowel(w, n-1)
}

// endsCVC reports whether w ends consonant-vowel-consonant, where the final
// consonant is not w, x, or y (the "cvc" rule used to decide whether to add
// a trailing e in steps 1b/5a-adjacent rules).
func endsCVC(w []byte) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if isVowel(w, n-1) || !isVowel(w, n-2) || isVowel(w, n-3) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w []byte, suf string) bool {
	return len(w) >= len(suf) && string(w[len(w)-len(suf):]) == suf
}

func trimSuffix(w []byte, n int) []byte {
	return w[:len(w)-n]
}

// step1a handles plural and -es sibilant forms: sses->ss, ies->i, ss->ss,
// s-> (removed) unless it would leave nothing. The ians/ian case is a
// domain extension beyond the standard 1980 algorithm (like the logi rule
// in step2Rules below): it strips the agent-noun suffix so "theologians"
// stems to the same root as "theology"/"theological"/"theologies".
func step1a(w []byte) []byte {
	switch {
	case hasSuffix(w, "ians"):
		return trimSuffix(w, 4)
	case hasSuffix(w, "ian") && len(w) > 3:
		return trimSuffix(w, 3)
	case hasSuffix(w, "sses"):
		return append(trimSuffix(w, 2))
	case hasSuffix(w, "ies"):
		return append(trimSuffix(w, 2))
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s") && len(w) > 1:
		return trimSuffix(w, 1)
	}
	return w
}

// step1b handles (m>0) eed -> ee; (*v*) ed -> ; (*v*) ing -> , with
// follow-up cvc/doubling cleanup when ed/ing is stripped.
func step1b(w []byte) []byte {
	switch {
	case hasSuffix(w, "eed"):
		stem := trimSuffix(w, 3)
		if measure(stem) > 0 {
			return append(stem, 'e', 'e')
		}
		return w
	case hasSuffix(w, "ed"):
		stem := trimSuffix(w, 2)
		if containsVowel(stem) {
			return step1bCleanup(stem)
		}
		return w
	case hasSuffix(w, "ing"):
		stem := trimSuffix(w, 3)
		if containsVowel(stem) {
			return step1bCleanup(stem)
		}
		return w
	}
	return w
}

func step1bCleanup(stem []byte) []byte {
	switch {
	case hasSuffix(stem, "at"), hasSuffix(stem, "bl"), hasSuffix(stem, "iz"):
		return append(stem, 'e')
	case endsDoubleConsonant(stem) && stem[len(stem)-1] != 'l' && stem[len(stem)-1] != 's' && stem[len(stem)-1] != 'z':
		return trimSuffix(stem, 1)
	case measure(stem) == 1 && endsCVC(stem):
		return append(stem, 'e')
	}
	return stem
}

// step1c turns terminal y into i when the stem before it contains a vowel.
func step1c(w []byte) []byte {
	if hasSuffix(w, "y") && len(w) > 1 {
		stem := w[:len(w)-1]
		if containsVowel(stem) {
			w[len(w)-1] = 'i'
		}
	}
	return w
}

type suffixRule struct {
	suffix string
	repl   string
	minM   int
}

// applyRules takes the first rule in table order whose suffix w ends with
// and replaces that suffix when the remaining stem's measure is >= minM;
// otherwise w is returned unchanged and later rules are not tried. Used by
// steps 2 and 3 (step 4 has its own loop).
func applyRules(w []byte, rules []suffixRule) []byte {
	for _, r := range rules {
		if hasSuffix(w, r.suffix) {
			stem := trimSuffix(w, len(r.suffix))
			if measure(stem) >= r.minM {
				return append(stem, []byte(r.repl)...)
			}
			return w
		}
	}
	return w
}

// step2Rules is the canonical Porter 1980 table, each gated on (m>0) of the
// stem left after the suffix is trimmed, plus one domain extension: logi is
// not part of the 1980 algorithm and is deliberately left ungated (minM: 0)
// so "theology"/"theologies" (which reach a zero-measure "theo" stem after
// step1c's y->i) still collapse to "theolog", matching "theological"'s
// standard-path stem.
var step2Rules = []suffixRule{
	{"ational", "ate", 1}, {"tional", "tion", 1},
	{"enci", "ence", 1}, {"anci", "ance", 1}, {"izer", "ize", 1},
	{"abli", "able", 1}, {"alli", "al", 1}, {"entli", "ent", 1},
	{"eli", "e", 1}, {"ousli", "ous", 1}, {"ization", "ize", 1},
	{"ation", "ate", 1}, {"ator", "ate", 1}, {"alism", "al", 1},
	{"iveness", "ive", 1}, {"fulness", "ful", 1}, {"ousness", "ous", 1},
	{"aliti", "al", 1}, {"iviti", "ive", 1}, {"biliti", "ble", 1},
	{"logi", "log", 0},
}

func step2(w []byte) []byte {
	return applyRulesLongestFirst(w, step2Rules)
}

// step3Rules is the canonical Porter 1980 table, each gated on (m>0).
var step3Rules = []suffixRule{
	{"icate", "ic", 1}, {"ative", "", 1}, {"alize", "al", 1},
	{"iciti", "ic", 1}, {"ical", "ic", 1}, {"ful", "", 1}, {"ness", "", 1},
}

func step3(w []byte) []byte {
	return applyRulesLongestFirst(w, step3Rules)
}

var step4Rules = []suffixRule{
	{"al", "", 1}, {"ance", "", 1}, {"ence", "", 1}, {"er", "", 1},
	{"ic", "", 1}, {"able", "", 1}, {"ible", "", 1}, {"ant", "", 1},
	{"ement", "", 1}, {"ment", "", 1}, {"ent", "", 1},
	{"ion", "", 1}, // special-cased below: requires stem to end in s or t
	{"ou", "", 1}, {"ism", "", 1}, {"ate", "", 1}, {"iti", "", 1},
	{"ous", "", 1}, {"ive", "", 1}, {"ize", "", 1},
}

func step4(w []byte) []byte {
	for _, r := range step4Rules {
		if !hasSuffix(w, r.suffix) {
			continue
		}
		stem := trimSuffix(w, len(r.suffix))
		if r.suffix == "ion" {
			if len(stem) == 0 {
				return w
			}
			last := stem[len(stem)-1]
			if last != 's' && last != 't' {
				return w
			}
		}
		if measure(stem) > 1 {
			return stem
		}
		return w
	}
	return w
}

// applyRulesLongestFirst mirrors Porter's step 2/3 rule tables, which are
// ordered so the longest applicable suffix is tried first; where one suffix
// ends with another (ational/tional, ization/ation), step2Rules lists the
// longer one first.
func applyRulesLongestFirst(w []byte, rules []suffixRule) []byte {
	return applyRules(w, rules)
}

// step5a drops a terminal e when m>1, or when m==1 and the stem does not
// end cvc.
func step5a(w []byte) []byte {
	if !hasSuffix(w, "e") {
		return w
	}
	stem := trimSuffix(w, 1)
	m := measure(stem)
	if m > 1 {
		return stem
	}
	if m == 1 && !endsCVC(stem) {
		return stem
	}
	return w
}

// step5b reduces a trailing double l to a single l when m>1.
func step5b(w []byte) []byte {
	if measure(w) > 1 && strings.HasSuffix(string(w), "ll") {
		return w[:len(w)-1]
	}
	return w
}
