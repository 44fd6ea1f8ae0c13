package quiz

import (
	"slices"
	"strings"
)

const DefaultMaxCandidates = 4

// Rand is the subset of *rand.Rand (math/rand/v2) used to build questions.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Question is one multiple-choice round. AnswerID appears exactly once in
// Candidates.
type Question struct {
	AnswerID   int   `json:"answer_id"`
	Candidates []int `json:"candidates"`
}

// GenerateQuestion picks the answer from remaining and fills the other
// candidate slots with distinct sample ids from catalogIDs. ok is false when
// fewer than two samples remain, which ends the game.
func GenerateQuestion(rng Rand, remaining, catalogIDs []int, maxCandidates int) (Question, bool) {
	if len(remaining) < 2 {
		return Question{}, false
	}
	if maxCandidates < 2 {
		maxCandidates = DefaultMaxCandidates
	}

	answerID := remaining[rng.IntN(len(remaining))]

	pool := make([]int, 0, len(catalogIDs))
	for _, id := range catalogIDs {
		if id == answerID || slices.Contains(pool, id) {
			continue
		}
		pool = append(pool, id)
	}
	// Partial Fisher-Yates: the first n entries of pool become a uniform
	// sample without replacement.
	distractors := min(maxCandidates-1, len(pool))
	for idx := 0; idx < distractors; idx++ {
		pick := idx + rng.IntN(len(pool)-idx)
		pool[idx], pool[pick] = pool[pick], pool[idx]
	}

	candidates := make([]int, 0, distractors+1)
	candidates = append(candidates, answerID)
	candidates = append(candidates, pool[:distractors]...)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	return Question{
		AnswerID:   answerID,
		Candidates: candidates,
	}, true
}

// CorrectAnswerID returns the answer recorded when the question was built.
func CorrectAnswerID(question Question) int {
	return question.AnswerID
}

func UserCorrect(answerID, selectedID int) bool {
	return answerID == selectedID
}

// CandidateLetter maps a candidate index to its button label.
func CandidateLetter(index int) string {
	return string(rune('A' + index))
}

// NormalizeLetter turns user input such as " b " or "2" into a candidate
// index.
func NormalizeLetter(input string, candidateCount int) (int, bool) {
	answer := strings.ToUpper(strings.TrimSpace(input))
	if len(answer) != 1 {
		return -1, false
	}

	var index int
	switch letter := answer[0]; {
	case letter >= 'A' && letter <= 'Z':
		index = int(letter - 'A')
	case letter >= '1' && letter <= '9':
		index = int(letter - '1')
	default:
		return -1, false
	}
	if index >= candidateCount {
		return -1, false
	}
	return index, true
}

func removeID(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func dedupe(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
