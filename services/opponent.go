package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"roastroyale/metrics"
	"roastroyale/models"
	"roastroyale/utils"
)

// ErrMalformedReply is returned when the generator's output does not match
// the {text, quality} shape.
var ErrMalformedReply = errors.New("malformed opponent reply")

// FallbackReply is served whenever the online opponent cannot produce a
// usable roast.
var FallbackReply = models.OpponentReply{
	Text:     "Oops! The AI forgot its punchline. 😅",
	Quality:  1,
	Fallback: true,
}

// Responder produces the opponent's comeback for one round. It never fails:
// problems degrade to a canned reply.
type Responder interface {
	Respond(ctx context.Context, userRoast, prompt string) models.OpponentReply
}

// offline table, quality tags are curated and used as-is
var cannedRoasts = []models.OpponentReply{
	{Text: "Oh honey, that roast was so weak it couldn't melt an ice cube in the Sahara! 🔥❄️", Quality: 9},
	{Text: "I've seen more fire in a broken lighter! Did you practice that comeback on your pet goldfish? 🐠💀", Quality: 8},
	{Text: "That roast was so cold, penguins are using it as air conditioning! 🐧❄️", Quality: 9},
	{Text: "Wow! With roasting skills like that, you could single-handedly end global warming! 🌍💨", Quality: 8},
	{Text: "That comeback was weaker than my WiFi signal during a thunderstorm! ⚡📶", Quality: 7},
	{Text: "Nice try! I've heard better comebacks from a broken GPS! 🗺️🤖", Quality: 6},
	{Text: "That roast was so mild, it could be served at a kindergarten lunch! 🍼👶", Quality: 5},
	{Text: "Ouch! That almost tickled... if I had feelings! 😴💤", Quality: 6},
	{Text: "Is that your final answer? Because I've got all day and better material! ⏰📚", Quality: 5},
	{Text: "That roast was colder than yesterday's pizza! 🍕❄️", Quality: 4},
	{Text: "Aww, that's cute! Did you learn that from a Disney movie? 🏰✨", Quality: 3},
	{Text: "Your roast game is like a broken pencil... pointless! ✏️💔", Quality: 4},
	{Text: "That was adorable! My calculator has better comebacks! 🧮😊", Quality: 3},
	{Text: "I've been more burned by room temperature water! 💧😐", Quality: 2},
	{Text: "That roast was so gentle, it could be a lullaby! 🎵😴", Quality: 2},
}

// OfflineResponder picks a canned comeback close to the player's level.
type OfflineResponder struct {
	rng   Randomizer
	band  int
	table []models.OpponentReply
}

func NewOfflineResponder(rng Randomizer, band int) *OfflineResponder {
	if band < 0 {
		band = 0
	}
	return &OfflineResponder{rng: rng, band: band, table: cannedRoasts}
}

// Respond keeps only lines whose quality is at least the player's quality
// minus the band, then picks one uniformly.
func (o *OfflineResponder) Respond(_ context.Context, userRoast, _ string) models.OpponentReply {
	floor := max(1, AssessRoastQuality(userRoast)-o.band)

	candidates := make([]models.OpponentReply, 0, len(o.table))
	for _, r := range o.table {
		if r.Quality >= floor {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		candidates = o.table
	}
	return candidates[o.rng.IntN(len(candidates))]
}

// OnlineResponder asks a text generator for a comeback and validates it.
type OnlineResponder struct {
	gen     TextGenerator
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewOnlineResponder(gen TextGenerator, timeout time.Duration, m *metrics.Metrics) *OnlineResponder {
	return &OnlineResponder{gen: gen, timeout: timeout, metrics: m}
}

func (o *OnlineResponder) Respond(ctx context.Context, userRoast, prompt string) models.OpponentReply {
	if o.gen == nil {
		o.fallback("no_client", errors.New("text generator not configured"))
		return FallbackReply
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	input, err := buildRoastPrompt(userRoast, prompt)
	if err != nil {
		o.fallback("prompt", err)
		return FallbackReply
	}

	raw, err := o.gen.GenerateText(ctx, input)
	if err != nil {
		o.fallback("transport", err)
		return FallbackReply
	}

	reply, reported, err := parseRoastReply(raw)
	if err != nil {
		o.fallback("parse", err)
		return FallbackReply
	}

	// Self-reported quality is not trusted; score the text like a player's.
	reply.Quality = AssessRoastQuality(reply.Text)
	utils.LogDebug("opponent reported quality %.1f, heuristic %d", reported, reply.Quality)
	return reply
}

func (o *OnlineResponder) fallback(reason string, err error) {
	utils.LogWarning("opponent fallback (%s): %v", reason, err)
	o.metrics.OpponentFallback(reason)
}

const roastPromptTemplate = `You are a legendary roast master AI performing in a high-stakes comedy battle show.

Your task is to craft a hilarious and savage comeback roast in response to a human's roast, while keeping it relevant to the current battle theme.

Only respond if the roast makes contextual sense. Do NOT reply with nonsense, off-topic jokes, or unrelated puns. Stay witty, sharp, and clear. One or two punchy lines max.

Input:
%s

Output: Return a JSON object with your funniest comeback and a self-rated burn score.

Format (NO markdown, NO explanation, NO code blocks):

{
  "text": "<Your AI roast comeback>",
  "quality": <Burn rating from 1 (cold) to 10 (savage)>
}
`

func buildRoastPrompt(userRoast, theme string) (string, error) {
	input, err := json.MarshalIndent(struct {
		HumanRoast  string `json:"human_roast"`
		BattleTheme string `json:"battle_theme"`
	}{userRoast, theme}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode roast input: %w", err)
	}
	return fmt.Sprintf(roastPromptTemplate, input), nil
}

// parseRoastReply decodes the generator output strictly. It returns the
// reply (quality not yet re-scored) and the quality the model claimed.
func parseRoastReply(raw string) (models.OpponentReply, float64, error) {
	var payload struct {
		Text    *string  `json:"text"`
		Quality *float64 `json:"quality"`
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleanModelOutput(raw))))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return models.OpponentReply{}, 0, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if dec.More() {
		return models.OpponentReply{}, 0, fmt.Errorf("%w: trailing data", ErrMalformedReply)
	}

	if payload.Text == nil || strings.TrimSpace(*payload.Text) == "" {
		return models.OpponentReply{}, 0, fmt.Errorf("%w: missing text", ErrMalformedReply)
	}
	if payload.Quality == nil {
		return models.OpponentReply{}, 0, fmt.Errorf("%w: missing quality", ErrMalformedReply)
	}
	if q := *payload.Quality; q < 1 || q > 10 {
		return models.OpponentReply{}, 0, fmt.Errorf("%w: quality %v out of range", ErrMalformedReply, q)
	}

	text := strings.TrimSpace(*payload.Text)
	if utf8.RuneCountInString(text) > models.MaxRoastLength {
		return models.OpponentReply{}, 0, fmt.Errorf("%w: text too long", ErrMalformedReply)
	}
	return models.OpponentReply{Text: text}, *payload.Quality, nil
}
