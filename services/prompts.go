package services

import "math/rand/v2"

// Randomizer is the source of randomness for prompts, reactions and the
// offline opponent. *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	IntN(n int) int
}

// SystemRandom draws from the math/rand/v2 global source, which is safe for
// concurrent use. A seeded *rand.Rand is not, so tests use that instead.
type SystemRandom struct{}

func (SystemRandom) IntN(n int) int { return rand.IntN(n) }

var roastPrompts = []string{
	"Roast this annoying gym bro who never stops talking about protein shakes! 💪",
	"Roast someone who always says 'I'm not like other people' but is totally basic! 🙄",
	"Roast that person who takes 50 selfies before posting one! 📸",
	"Roast someone who claims they're 'naturally funny' but tells the worst jokes! 😬",
	"Roast that friend who always shows up late but blames traffic! 🚗",
}

// PromptPool hands out battle themes without repeating one inside a battle
// until every theme has been used.
type PromptPool struct {
	prompts []string
	rng     Randomizer
}

func NewPromptPool(prompts []string, rng Randomizer) *PromptPool {
	if len(prompts) == 0 {
		prompts = roastPrompts
	}
	return &PromptPool{prompts: prompts, rng: rng}
}

// DefaultPrompts returns a copy of the built-in battle themes
func DefaultPrompts() []string {
	return append([]string(nil), roastPrompts...)
}

func (p *PromptPool) Len() int { return len(p.prompts) }

// Prompt returns the theme at index i, or "" when out of range.
func (p *PromptPool) Prompt(i int) string {
	if i < 0 || i >= len(p.prompts) {
		return ""
	}
	return p.prompts[i]
}

// Next picks an index not present in used and returns it with the new used
// list. Once the pool is exhausted the rotation starts over. The used slice
// passed in is never modified.
func (p *PromptPool) Next(used []int) (int, []int) {
	seen := make(map[int]bool, len(used))
	for _, i := range used {
		seen[i] = true
	}

	free := make([]int, 0, len(p.prompts))
	for i := range p.prompts {
		if !seen[i] {
			free = append(free, i)
		}
	}

	var next []int
	if len(free) == 0 {
		for i := range p.prompts {
			free = append(free, i)
		}
	} else {
		next = append(next, used...)
	}

	idx := free[p.rng.IntN(len(free))]
	return idx, append(next, idx)
}
