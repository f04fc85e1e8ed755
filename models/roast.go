package models

// MaxRoastLength caps a single submission, counted in characters
const MaxRoastLength = 500

// Subject says who a submission or reaction belongs to
type Subject string

const (
	SubjectUser     Subject = "user"
	SubjectOpponent Subject = "opponent"
)

// Reaction is a display-only audience line
type Reaction struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Reaction string  `json:"reaction"`
	Emoji    string  `json:"emoji"`
	Subject  Subject `json:"subject"`
}

// OpponentReply is what the opponent responder hands back for one round
type OpponentReply struct {
	Text     string `json:"text"`
	Quality  int    `json:"quality"`
	Fallback bool   `json:"fallback,omitempty"` // true when the generator failed and the canned reply was used
}

// Round is one exchange of the battle. It is scored once the opponent reply
// has been recorded.
type Round struct {
	Number            int        `json:"number"`
	PromptIndex       int        `json:"promptIndex"`
	Prompt            string     `json:"prompt"`
	UserRoast         string     `json:"userRoast,omitempty"`
	OpponentRoast     string     `json:"opponentRoast,omitempty"`
	UserQuality       int        `json:"userQuality,omitempty"`
	OpponentQuality   int        `json:"opponentQuality,omitempty"`
	UserLabel         string     `json:"userLabel,omitempty"`
	OpponentLabel     string     `json:"opponentLabel,omitempty"`
	Points            int        `json:"points,omitempty"`
	OpponentFallback  bool       `json:"opponentFallback,omitempty"`
	UserReactions     []Reaction `json:"userReactions,omitempty"`
	OpponentReactions []Reaction `json:"opponentReactions,omitempty"`
	Scored            bool       `json:"scored"`
}
