package text

// Token is the atomic unit spans and token lengths are measured in.
type Token struct {
	Text  string // surface form as it appears in the content
	Lemma string // canonical form; falls back to Text when no lemmatizer ran
	Start int    // byte offset of the first rune in the document content
	End   int    // byte offset one past the last rune
	Punct bool   // true for punctuation and symbol tokens
}

// Form returns the lemma if set, otherwise the surface text.
func (t Token) Form() string {
	if t.Lemma != "" {
		return t.Lemma
	}
	return t.Text
}
