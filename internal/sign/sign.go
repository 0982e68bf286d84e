// Package sign maps hand landmarks to sign-language letters and words.
package sign

// Sign is a symbolic label produced by the classifier.
type Sign string

// None is the absence of a match.
const None Sign = ""

// Letters.
const (
	A Sign = "A"
	B Sign = "B"
	C Sign = "C"
	D Sign = "D"
	E Sign = "E"
	F Sign = "F"
	I Sign = "I"
	K Sign = "K"
	L Sign = "L"
	O Sign = "O"
	U Sign = "U"
	V Sign = "V"
	W Sign = "W"
	Y Sign = "Y"
)

// Words.
const (
	Hello  Sign = "HELLO"
	Thanks Sign = "THANKS"
	Please Sign = "PLEASE"
	Yes    Sign = "YES"
	Good   Sign = "GOOD"
	Help   Sign = "HELP"
)

// Kind distinguishes letters from words.
type Kind string

const (
	KindLetter Kind = "letter"
	KindWord   Kind = "word"
)

// All lists every sign that has a classification rule, letters first.
var All = []Sign{A, B, C, D, E, F, I, K, L, O, U, V, W, Y, Hello, Thanks, Please, Yes, Good, Help}

// String returns the text appended to a transcript for the sign.
func (s Sign) String() string {
	return string(s)
}

// IsNone reports whether s is the no-match sentinel.
func (s Sign) IsNone() bool {
	return s == None
}

// Kind reports whether s is a letter or a word.
func (s Sign) Kind() Kind {
	if len(s) == 1 {
		return KindLetter
	}
	return KindWord
}

// Parse returns the sign with the given label and whether it is known.
func Parse(label string) (Sign, bool) {
	for _, s := range All {
		if string(s) == label {
			return s, true
		}
	}
	return None, false
}
