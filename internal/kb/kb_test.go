package kb

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// sampleKB is the demo knowledge base served by the kbhost get_knowledge_base
// tool, as retrieved by the client.
const sampleKB = `Here is the retrieved knowledge base:

Q1: What is our company's vacation policy?
A1: Full-time employees are entitled to 20 paid vacation days per year. Vacation days can be taken after completing 6 months of employment. Unused vacation days can be carried over to the next year up to a maximum of 5 days. Vacation requests should be submitted at least 2 weeks in advance through the HR portal.

Q2: How do I request a new software license?
A2: To request a new software license, please submit a ticket through the IT Service Desk portal. Include the software name, version, and business justification. Standard software licenses are typically approved within 2 business days. For specialized software, approval may take up to 5 business days and may require department head approval.

Q3: What is our remote work policy?
A3: Our company follows a hybrid work model. Employees can work remotely up to 3 days per week. Remote work days must be coordinated with your team and approved by your direct manager. All remote work requires a stable internet connection and a dedicated workspace. Core collaboration hours are 10:00 AM to 3:00 PM EST.

Q4: How do I submit an expense report?
A4: Expense reports should be submitted through the company's expense management system. Include all receipts, categorize expenses appropriately, and add a brief description for each entry. Reports must be submitted within 30 days of the expense. For expenses over $100, additional documentation may be required. All reports require manager approval.

Q5: What is our process for reporting a security incident?
A5: If you discover a security incident, immediately contact the Security Team at security@company.com or call the 24/7 security hotline. Do not attempt to investigate or resolve the incident yourself. Document what you observed, including timestamps and affected systems. The Security Team will guide you through the incident response process and may need your assistance for investigation.`

func TestExtractQuestion(t *testing.T) {
	tests := []struct {
		name   string
		kbText string
		index  int
		want   string
		found  bool
	}{
		{
			name:   "first question from sample",
			kbText: sampleKB,
			index:  1,
			want:   "What is our company's vacation policy?",
			found:  true,
		},
		{
			name:   "middle question from sample",
			kbText: sampleKB,
			index:  4,
			want:   "How do I submit an expense report?",
			found:  true,
		},
		{
			name:   "missing index",
			kbText: sampleKB,
			index:  6,
			found:  false,
		},
		{
			name:   "empty text",
			kbText: "",
			index:  1,
			found:  false,
		},
		{
			name:   "question at end of text without terminator",
			kbText: "Q1: Where is the office?",
			index:  1,
			want:   "Where is the office?",
			found:  true,
		},
		{
			name:   "marker with no content is found but empty",
			kbText: "Q1:",
			index:  1,
			want:   "",
			found:  true,
		},
		{
			name:   "multi-line question preserved up to answer marker",
			kbText: "Q1: What is the policy\non remote work?\nA1: Hybrid.",
			index:  1,
			want:   "What is the policy\non remote work?",
			found:  true,
		},
		{
			name:   "marker not at line start does not terminate",
			kbText: "Q1: Contact HR at A1: extension 42\nA1: Done.",
			index:  1,
			want:   "Contact HR at A1: extension 42",
			found:  true,
		},
		{
			name:   "terminated by next question marker",
			kbText: "Q1: First?\nQ2: Second?",
			index:  1,
			want:   "First?",
			found:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractQuestion(tt.kbText, tt.index)
			if found != tt.found {
				t.Fatalf("ExtractQuestion() found = %v, want %v", found, tt.found)
			}
			if got != tt.want {
				t.Errorf("ExtractQuestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractQuestion_Deterministic(t *testing.T) {
	first, ok1 := ExtractQuestion(sampleKB, 3)
	second, ok2 := ExtractQuestion(sampleKB, 3)
	if !ok1 || !ok2 || first != second {
		t.Errorf("repeated extraction differs: %q vs %q", first, second)
	}
}

func TestExtractAnswer(t *testing.T) {
	got, found := ExtractAnswer(sampleKB, 4)
	if !found {
		t.Fatal("ExtractAnswer() did not find A4")
	}
	if !strings.HasPrefix(got, "Expense reports should be submitted") {
		t.Errorf("ExtractAnswer() = %q, want expense-report answer", got)
	}

	if _, found := ExtractAnswer(sampleKB, 6); found {
		t.Error("ExtractAnswer() found A6, want not found")
	}
}

func TestCollectQuestions(t *testing.T) {
	questions := CollectQuestions(sampleKB)
	if len(questions) != 5 {
		t.Fatalf("CollectQuestions() returned %d entries, want 5", len(questions))
	}
	for i, q := range questions {
		if q.Index != i+1 {
			t.Errorf("entry %d has index %d, want %d", i, q.Index, i+1)
		}
	}
	if questions[2].Text != "What is our remote work policy?" {
		t.Errorf("Q3 text = %q", questions[2].Text)
	}
}

func TestCollectQuestions_GapStops(t *testing.T) {
	kbText := "Q1: First?\nA1: Yes.\nQ3: Third?\nA3: Also yes."

	questions := CollectQuestions(kbText)
	if len(questions) != 1 {
		t.Fatalf("CollectQuestions() returned %d entries, want 1 (gap at Q2 stops the scan)", len(questions))
	}
	if questions[0].Index != 1 || questions[0].Text != "First?" {
		t.Errorf("CollectQuestions()[0] = %+v", questions[0])
	}
}

func TestCollectQuestions_NineEntryCeiling(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		b.WriteString("Q" + itoa(i) + ": question number " + itoa(i) + "\n")
	}
	kbText := b.String()

	questions := CollectQuestions(kbText)
	if len(questions) != 9 {
		t.Fatalf("CollectQuestions() returned %d entries, want 9", len(questions))
	}
	for _, q := range questions {
		if strings.Contains(q.Text, "number 10") {
			t.Errorf("Q10 content leaked into entry %d: %q", q.Index, q.Text)
		}
	}
}

func itoa(n int) string {
	if n == 10 {
		return "10"
	}
	return string(rune('0' + n))
}

func TestCollectQuestions_Empty(t *testing.T) {
	if got := CollectQuestions("no markers here"); len(got) != 0 {
		t.Errorf("CollectQuestions() = %v, want empty", got)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		question    string
		wantScore   int
		wantMatched []string
	}{
		{
			name:        "case and punctuation insensitive",
			query:       "What IS the Policy?",
			question:    "what is the policy",
			wantScore:   4,
			wantMatched: []string{"is", "policy", "the", "what"},
		},
		{
			name:      "no overlap",
			query:     "completely unrelated words",
			question:  "what is the policy",
			wantScore: 0,
		},
		{
			name:      "empty query",
			query:     "",
			question:  "what is the policy",
			wantScore: 0,
		},
		{
			name:        "duplicates count once",
			query:       "policy policy policy",
			question:    "the policy policy",
			wantScore:   1,
			wantMatched: []string{"policy"},
		},
		{
			name:        "common words are not filtered",
			query:       "the the the",
			question:    "the end",
			wantScore:   1,
			wantMatched: []string{"the"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matched := Score(tt.query, tt.question)
			if score != tt.wantScore {
				t.Errorf("Score() = %d, want %d", score, tt.wantScore)
			}
			if tt.wantMatched != nil && !reflect.DeepEqual(matched, tt.wantMatched) {
				t.Errorf("Score() matched = %v, want %v", matched, tt.wantMatched)
			}
		})
	}
}

func TestScore_SymmetryUnderNormalization(t *testing.T) {
	a, _ := Score("What IS the Policy?", "what is the policy")
	b, _ := Score("what is the policy", "what is the policy")
	if a != b {
		t.Errorf("normalization not symmetric: %d vs %d", a, b)
	}
}

func TestFindMatchingQuestion(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantIndex int
		wantScore int
	}{
		{
			// Shared with Q4: how, i, submit, report.
			name:      "expense report query selects Q4",
			query:     "How can I submit a report on expenses?",
			wantIndex: 4,
			wantScore: 4,
		},
		{
			// Identical to Q1 after normalization: all six words shared.
			name:      "vacation policy query selects Q1",
			query:     "What is our company's vacation policy?",
			wantIndex: 1,
			wantScore: 6,
		},
		{
			// Identical to Q5 after normalization: all nine words shared.
			name:      "security incident query selects Q5",
			query:     "What is our process for reporting a security incident?",
			wantIndex: 5,
			wantScore: 9,
		},
		{
			name:      "no overlap defaults to Q1 at score zero",
			query:     "zyzzyva qwertyuiop",
			wantIndex: 1,
			wantScore: 0,
		},
		{
			name:      "empty query defaults to Q1 at score zero",
			query:     "",
			wantIndex: 1,
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := FindMatchingQuestion(sampleKB, tt.query)
			if err != nil {
				t.Fatalf("FindMatchingQuestion() error: %v", err)
			}
			if match.Index != tt.wantIndex {
				t.Errorf("FindMatchingQuestion() index = %d (score %d), want %d", match.Index, match.Score, tt.wantIndex)
			}
			if match.Score != tt.wantScore {
				t.Errorf("FindMatchingQuestion() score = %d, want %d", match.Score, tt.wantScore)
			}
		})
	}
}

func TestFindMatchingQuestion_MatchedWords(t *testing.T) {
	match, err := FindMatchingQuestion(sampleKB, "How can I submit a report on expenses?")
	if err != nil {
		t.Fatalf("FindMatchingQuestion() error: %v", err)
	}
	// Shared with Q4 "How do I submit an expense report?": how, i, submit, report.
	want := []string{"how", "i", "report", "submit"}
	if !reflect.DeepEqual(match.MatchedWords, want) {
		t.Errorf("matched words = %v, want %v", match.MatchedWords, want)
	}
}

func TestFindMatchingQuestion_TieBreaksToLowestIndex(t *testing.T) {
	kbText := "Q1: alpha beta gamma\nA1: one\nQ2: alpha beta delta\nA2: two"

	match, err := FindMatchingQuestion(kbText, "alpha beta")
	if err != nil {
		t.Fatalf("FindMatchingQuestion() error: %v", err)
	}
	if match.Index != 1 {
		t.Errorf("tie resolved to index %d, want 1", match.Index)
	}
	if match.Score != 2 {
		t.Errorf("tie score = %d, want 2", match.Score)
	}
}

func TestFindMatchingQuestion_EmptyKnowledgeBase(t *testing.T) {
	_, err := FindMatchingQuestion("nothing here", "any query")
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("FindMatchingQuestion() error = %v, want ErrNoQuestions", err)
	}
}

func TestFindMatchingQuestion_IndexRoundTrips(t *testing.T) {
	queries := []string{
		"How can I submit a report on expenses?",
		"What is our company's vacation policy?",
		"remote work from home",
		"no overlap whatsoever xkcd",
	}
	for _, query := range queries {
		match, err := FindMatchingQuestion(sampleKB, query)
		if err != nil {
			t.Fatalf("FindMatchingQuestion(%q) error: %v", query, err)
		}
		text, found := ExtractQuestion(sampleKB, match.Index)
		if !found {
			t.Fatalf("index %d from match is not extractable", match.Index)
		}
		if text != match.Question {
			t.Errorf("round-trip text mismatch for index %d: %q vs %q", match.Index, text, match.Question)
		}
	}
}
