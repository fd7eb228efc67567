package tokenizer

import "testing"

func TestTokenizeDropsStopWordsAndPunctuation(t *testing.T) {
	tokens := Tokenize("The Summa Theologica, and other works of St. Thomas Aquinas!")
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	for _, stop := range []string{"the", "and", "of"} {
		for _, term := range terms {
			if term == stop {
				t.Fatalf("expected stop word %q to be dropped, got %v", stop, terms)
			}
		}
	}
	if len(terms) == 0 {
		t.Fatal("expected at least one token")
	}
}

func TestTokenizePositionsAreSequential(t *testing.T) {
	tokens := Tokenize("natural law tradition")
	for i, tok := range tokens {
		if tok.Position != i {
			t.Fatalf("token %d (%q) has position %d, want %d", i, tok.Term, tok.Position, i)
		}
	}
}

func TestStemmingConvergence(t *testing.T) {
	words := []string{"theology", "theological", "theologians", "theologies"}
	var want string
	for _, w := range words {
		tokens := Tokenize(w)
		if len(tokens) != 1 {
			t.Fatalf("Tokenize(%q) = %v, want exactly one token", w, tokens)
		}
		got := tokens[0].Term
		if want == "" {
			want = got
		} else if got != want {
			t.Errorf("stem(%q) = %q, want %q (same as other forms)", w, got, want)
		}
	}
}

func TestPorterStemKnownForms(t *testing.T) {
	cases := map[string]string{
		"caresses":  "caress",
		"ponies":    "poni",
		"ties":      "ti",
		"caress":    "caress",
		"cats":      "cat",
		"feed":      "feed",
		"agreed":    "agre",
		"plastered": "plaster",
		"bled":      "bled",
		"motoring":  "motor",
		"sing":      "sing",
		"conflated": "conflat",
		"troubled":  "troubl",
		"sized":     "size",
		"hopping":   "hop",
		"tanned":    "tan",
		"falling":   "fall",
		"hissing":   "hiss",
		"fizzed":    "fizz",
		"failing":   "fail",
		"filing":    "file",
		"happy":     "happi",
		"sky":       "sky",
		"relational":   "relat",
		"conditional":  "condit",
		"rational":     "ration",
		"valenci":      "valenc",
		"hesitanci":    "hesit",
		"digitizer":    "digit",
		"conformabli":  "conform",
		"radicalli":    "radic",
		"differentli":  "differ",
		"vileli":       "vile",
		"analogousli":  "analog",
		"vietnamization": "vietnam",
		"predication":    "predic",
		"operator":       "oper",
		"feudalism":      "feudal",
		"decisiveness":   "decis",
		"hopefulness":    "hope",
		"callousness":    "callous",
		"formaliti":      "formal",
		"sensitiviti":    "sensit",
		"sensibiliti":    "sensibl",
		"triplicate": "triplic",
		"formative":  "form",
		"formalize":  "formal",
		"electriciti": "electr",
		"electrical":  "electr",
		"hopeful":     "hope",
		"goodness":    "good",
		"revival":  "reviv",
		"allowance": "allow",
		"inference": "infer",
		"airliner": "airlin",
		"gyroscopic": "gyroscop",
		"adjustable": "adjust",
		"defensible": "defens",
		"irritant": "irrit",
		"replacement": "replac",
		"adjustment":  "adjust",
		"dependent": "depend",
		"adoption": "adopt",
		"homologou": "homolog",
		"communism": "commun",
		"activate": "activ",
		"angulariti": "angular",
		"homologous": "homolog",
		"effective": "effect",
		"bowdlerize": "bowdler",
		"probate": "probat",
		"rate":    "rate",
		"cease":   "ceas",
		"controll": "control",
		"roll":     "roll",
	}
	for word, want := range cases {
		got := stem(word)
		if got != want {
			t.Errorf("stem(%q) = %q, want %q", word, got, want)
		}
	}
}

func TestWordsOfLengthTwoOrLessUnchanged(t *testing.T) {
	for _, w := range []string{"is", "ox", "a", ""} {
		if got := stem(w); got != w {
			t.Errorf("stem(%q) = %q, want unchanged %q", w, got, w)
		}
	}
}
