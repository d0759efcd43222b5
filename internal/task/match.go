package task

import (
	"sort"
	"strings"
)

// FuzzyMatch checks whether all characters of query appear in target in order
// (case-insensitive). Returns whether it matched and a relevance score.
//
// Scoring rewards:
//   - consecutive character matches
//   - matches at the start of the string
//   - matches at word boundaries (after space, /, -, _)
func FuzzyMatch(query, target string) (bool, int) {
	if query == "" {
		return true, 0
	}

	q := strings.ToLower(query)
	t := strings.ToLower(target)

	qi := 0
	score := 0
	consecutive := 0

	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			consecutive = 0
			continue
		}
		qi++
		consecutive++
		score += consecutive

		if ti == 0 {
			score += 3
		} else {
			switch t[ti-1] {
			case ' ', '/', '-', '_', '.':
				score += 2
			}
		}
	}

	return qi == len(q), score
}

// Match is a task found by keyword with its relevance.
type Match struct {
	Task  Task
	Score int
}

// Find returns the tasks whose description fuzzy-matches keyword, best first.
// An exact substring match always outranks a scattered one.
func Find(tasks []Task, keyword string) []Match {
	keyword = strings.TrimSpace(keyword)
	var out []Match
	for _, t := range tasks {
		ok, score := FuzzyMatch(keyword, t.Description)
		if !ok {
			continue
		}
		if keyword != "" && strings.Contains(strings.ToLower(t.Description), strings.ToLower(keyword)) {
			score += 100
		}
		out = append(out, Match{Task: t, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
