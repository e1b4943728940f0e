// Package kb matches free-text user queries against a marker-delimited
// knowledge base of question/answer pairs.
//
// A knowledge base is a single text blob containing entries introduced by
// "Q<n>:" markers with corresponding "A<n>:" answer markers. The matcher
// extracts every question, scores each one against the query by normalized
// word overlap, and picks the best-scoring entry.
package kb

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// ErrNoQuestions is returned when the knowledge base text contains no Q1:
// entry. Callers must not treat the default index as meaningful in that case.
var ErrNoQuestions = errors.New("no questions available in knowledge base")

// maxQuestions caps how many entries are probed. The collection scan never
// looks past Q9.
const maxQuestions = 9

// marker terminates a captured span: a line starting with one uppercase
// letter and one or more digits followed by a colon (the next Q<m>: or A<m>:).
var marker = regexp.MustCompile(`\n[A-Z][0-9]+:`)

// Question is a single extracted knowledge-base question.
type Question struct {
	Index int    // 1-based entry index
	Text  string // trimmed question text
}

// Match is the entry judged most relevant to a query.
type Match struct {
	Index        int      // 1-based index of the chosen entry
	Question     string   // trimmed question text of the chosen entry
	Score        int      // number of distinct shared words (0 for the default match)
	MatchedWords []string // the shared words, sorted
}

// ExtractQuestion pulls the question text for the given index out of kbText.
// The captured span runs from just after the "Q<index>:" marker to the next
// marker at a line start, or to the end of the text. Returns false if the
// marker is absent. A marker with no trailing content yields "" and true.
func ExtractQuestion(kbText string, index int) (string, bool) {
	return extract(kbText, fmt.Sprintf("Q%d:", index))
}

// ExtractAnswer pulls the answer text for the given index out of kbText using
// the "A<index>:" marker. Same boundary rules as ExtractQuestion; callers use
// it to re-derive the answer for a matched index.
func ExtractAnswer(kbText string, index int) (string, bool) {
	return extract(kbText, fmt.Sprintf("A%d:", index))
}

func extract(kbText, tag string) (string, bool) {
	start := strings.Index(kbText, tag)
	if start < 0 {
		return "", false
	}

	rest := kbText[start+len(tag):]
	if loc := marker.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return strings.TrimSpace(rest), true
}

// CollectQuestions extracts all available questions in index order, probing
// 1, 2, 3, ... and stopping at the first missing index. Gaps terminate the
// scan: a missing Q2 hides a present Q3. At most nine entries are collected.
// Returns an empty slice when Q1 is absent.
func CollectQuestions(kbText string) []Question {
	questions := make([]Question, 0, maxQuestions)
	for i := 1; i <= maxQuestions; i++ {
		text, ok := ExtractQuestion(kbText, i)
		if !ok {
			break
		}
		questions = append(questions, Question{Index: i, Text: text})
	}
	return questions
}

// Score computes the normalized bag-of-words overlap between a query and a
// question. Both texts are lowercased, stripped of everything but letters,
// digits and whitespace, and split into sets of distinct words. The score is
// the size of the intersection; the matched words are returned sorted.
// Duplicate words count once. No stop-word filtering.
func Score(query, question string) (int, []string) {
	queryWords := tokenize(query)
	questionWords := tokenize(question)

	var matched []string
	for word := range queryWords {
		if _, ok := questionWords[word]; ok {
			matched = append(matched, word)
		}
	}
	sort.Strings(matched)
	return len(matched), matched
}

// tokenize normalizes text into a set of distinct words.
func tokenize(text string) map[string]struct{} {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	words := make(map[string]struct{})
	for _, w := range strings.Fields(clean) {
		words[w] = struct{}{}
	}
	return words
}

// FindMatchingQuestion selects the knowledge-base entry most relevant to the
// user query. Entries are visited in ascending index order and the best score
// is updated only on a strict improvement, so ties resolve to the lowest
// index. A query sharing no words with any question yields the first entry at
// score 0. Returns ErrNoQuestions when kbText contains no Q1: entry.
func FindMatchingQuestion(kbText, userQuery string) (Match, error) {
	questions := CollectQuestions(kbText)
	if len(questions) == 0 {
		return Match{}, ErrNoQuestions
	}

	best := Match{Index: questions[0].Index, Question: questions[0].Text}
	for _, q := range questions {
		score, words := Score(userQuery, q.Text)
		if score > best.Score {
			best = Match{Index: q.Index, Question: q.Text, Score: score, MatchedWords: words}
		}
	}
	return best, nil
}
