package services

import (
	"fmt"
	"time"

	"roastroyale/models"
)

var audienceBots = []string{
	"RoastMaster2000", "BurnQueen", "SavageBot", "FireStarter", "ComebackKing",
	"RoastGod", "BurnVictim", "SizzleExpert", "FlameWarrior", "ToastMaster",
	"HeatSeeker", "BlazeBoss", "ScorchLord", "InfernoFan", "CrispyCritic",
}

type reactionLine struct {
	text  string
	emoji string
}

var userReactionPools = map[QualityTier][]reactionLine{
	TierHigh: {
		{"YOOO THAT WAS BRUTAL! 🔥🔥🔥", "🔥"},
		{"SOMEBODY CALL THE FIRE DEPARTMENT! 🚒", "💀"},
		{"THAT WAS ABSOLUTELY SAVAGE! 😱", "😱"},
		{"RIP AI, you just got DESTROYED! ⚰️", "⚰️"},
		{"HOLY MOLY THAT WAS SPICY! 🌶️🌶️", "🌶️"},
		{"I FELT THAT FROM HERE! 💥", "💥"},
		{"SOMEONE STOP THE FIGHT! 🛑", "🛑"},
	},
	TierMedium: {
		{"Ooh, that's a decent burn! 👏", "👏"},
		{"Not bad, not bad at all! 😏", "😏"},
		{"That had some heat to it! 🔥", "🔥"},
		{"Pretty solid roast there! 👍", "👍"},
		{"I see what you did there! 😄", "😄"},
		{"That's gonna leave a mark! 😬", "😬"},
	},
	TierLow: {
		{"Eh, you can do better than that! 😐", "😐"},
		{"That was... gentle? 🤔", "🤔"},
		{"Come on, bring the heat! 🔥", "🔥"},
		{"I've seen spicier mayo! 🥄", "🥄"},
		{"That tickled more than it burned! 😊", "😊"},
		{"Room temperature roast! 🌡️", "🌡️"},
	},
}

var opponentReactionPools = map[QualityTier][]reactionLine{
	TierHigh: {
		{"OH NO THE AI IS LEARNING! 🤖💀", "🤖"},
		{"SKYNET IS ROASTING US NOW! 😨", "😨"},
		{"THE MACHINES ARE TOO POWERFUL! ⚡", "⚡"},
		{"AI JUST ENDED THIS PERSON'S CAREER! 💼", "💼"},
		{"BEEP BOOP DESTRUCTION MODE! 🔥🤖", "🔥"},
		{"ERROR 404: MERCY NOT FOUND! 💻", "💻"},
	},
	TierMedium: {
		{"The AI's getting good at this! 🤖", "🤖"},
		{"Not bad for a robot! 👾", "👾"},
		{"AI comeback was solid! 💪", "💪"},
		{"The future is now! 🚀", "🚀"},
		{"Decent burn from our robot friend! 🔥", "🔥"},
	},
	TierLow: {
		{"AI needs more training! 📚", "📚"},
		{"That was very... polite? 🤖😊", "😊"},
		{"Come on AI, step it up! ⬆️", "⬆️"},
		{"The robot is being too nice! 🤗", "🤗"},
		{"AI.exe has stopped working! 💻", "💻"},
	},
}

const (
	minReactions = 2
	maxReactions = 4
)

// AudienceSelector draws audience reactions for a scored roast
type AudienceSelector struct {
	rng Randomizer
	now func() time.Time
}

func NewAudienceSelector(rng Randomizer) *AudienceSelector {
	return &AudienceSelector{rng: rng, now: time.Now}
}

// GenerateAudienceReactions returns 2 to 4 reactions for the tier of quality.
// Audience members do not repeat until all of them have spoken, and lines do
// not repeat within one call; when the tier pool is smaller than the draw
// count the result is shorter. Output keeps draw order.
func (a *AudienceSelector) GenerateAudienceReactions(quality int, subject models.Subject) []models.Reaction {
	pools := userReactionPools
	if subject == models.SubjectOpponent {
		pools = opponentReactionPools
	}
	pool := append([]reactionLine(nil), pools[TierFor(quality)]...)

	count := minReactions + a.rng.IntN(maxReactions-minReactions+1)
	stamp := a.now().UnixNano()

	bots := append([]string(nil), audienceBots...)
	reactions := make([]models.Reaction, 0, count)
	for i := 0; i < count && len(pool) > 0; i++ {
		if len(bots) == 0 {
			bots = append(bots, audienceBots...)
		}
		b := a.rng.IntN(len(bots))
		name := bots[b]
		bots = append(bots[:b], bots[b+1:]...)

		l := a.rng.IntN(len(pool))
		line := pool[l]
		pool = append(pool[:l], pool[l+1:]...)

		reactions = append(reactions, models.Reaction{
			ID:       fmt.Sprintf("%s-%d-%d", name, stamp, i),
			Name:     name,
			Reaction: line.text,
			Emoji:    line.emoji,
			Subject:  subject,
		})
	}
	return reactions
}
