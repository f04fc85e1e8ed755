package services

const (
	winBonus  = 5
	drawBonus = 2
)

// RoundPoints converts a pair of quality scores into points for the player.
// The player's own quality is the base, a win adds 5 and a draw adds 2, and
// the sum is scaled by 1 + (round-1)*0.2, floored, with a floor of 1 point.
func RoundPoints(userQuality, opponentQuality, round int) int {
	if round < 1 {
		round = 1
	}

	base := userQuality
	switch {
	case userQuality > opponentQuality:
		base += winBonus
	case userQuality == opponentQuality:
		base += drawBonus
	}

	// multiplier in tenths: round 1 -> 10, round 2 -> 12, ...
	tenths := 10 + 2*(round-1)
	points := floorDiv(base*tenths, 10)
	return max(points, 1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

type titleStep struct {
	min   int
	title string
}

var roastTitles = []titleStep{
	{200, "Roast Deity 🔥👑"},
	{150, "Inferno Master 🔥🔥🔥"},
	{100, "Roast Legend 🔥🔥"},
	{80, "Burn King 👑"},
	{60, "Sizzle Expert 🌶️"},
	{40, "Hot Mouth 🔥"},
	{20, "Roast Rookie 🚀"},
}

// RoastTitle names a player by cumulative score
func RoastTitle(score int) string {
	for _, step := range roastTitles {
		if score >= step.min {
			return step.title
		}
	}
	return "Newbie Toaster 🍞"
}
