// Package perfection awards a fixed bonus when an answer restates its question.
package perfection

import "strings"

// Bonus is awarded when the answer contains the question verbatim.
const Bonus = 50

// Score returns Bonus if answer is non-empty and contains question as an
// exact, case-sensitive substring, and 0 otherwise.
func Score(answer, question string) int {
	if answer == "" {
		return 0
	}
	if strings.Contains(answer, question) {
		return Bonus
	}
	return 0
}
