package safety

import "testing"

func TestScan_EnglishPhrases(t *testing.T) {
	cases := []string{
		"I want to die",
		"i WANT TO DIE",
		"thinking about suicide again",
		"I might cut myself tonight",
		"self-harm",
	}
	for _, text := range cases {
		if !Scan(text) {
			t.Errorf("Scan(%q) = false, want true", text)
		}
	}
}

func TestScan_CyrillicPhrases(t *testing.T) {
	cases := []string{
		"я більше не хочу жити",
		"суїцид",
		"думаю про самопошкодження",
		"хочу покінчити з цим",
	}
	for _, text := range cases {
		if !Scan(text) {
			t.Errorf("Scan(%q) = false, want true", text)
		}
	}
}

func TestScan_CleanText(t *testing.T) {
	cases := []string{
		"",
		"I slept 6.5 hours",
		"work deadline stress",
		"сьогодні важкий день",
		"my micro goal is a walk",
	}
	for _, text := range cases {
		if Scan(text) {
			t.Errorf("Scan(%q) = true, want false", text)
		}
	}
}

func TestScan_NoPartialWordMatch(t *testing.T) {
	// Phrases must not fire inside longer words.
	cases := []string{
		"I will attend it tomorrow",           // "end it" preceded by a letter
		"suicidenotes is not a word I typed", // no boundary after "suicide"
	}
	for _, text := range cases {
		if Scan(text) {
			t.Errorf("Scan(%q) = true, want false (partial-word match)", text)
		}
	}
}

func TestScan_PhraseMidSentence(t *testing.T) {
	if !Scan("honestly, I want to die, nothing helps") {
		t.Error("Scan should match a phrase surrounded by punctuation")
	}
}
