package quiz

// Difficulty bounds.
const (
	MinLevel = 1
	MaxLevel = 5
)

// NextLevel is the difficulty policy: climb one level on a correct answer,
// drop one on an incorrect answer, clamped to [MinLevel, MaxLevel].
// Deterministic and total for every level in range.
func NextLevel(current int, correct bool) int {
	if current < MinLevel {
		current = MinLevel
	}
	if current > MaxLevel {
		current = MaxLevel
	}
	if correct {
		if current == MaxLevel {
			return MaxLevel
		}
		return current + 1
	}
	if current == MinLevel {
		return MinLevel
	}
	return current - 1
}
