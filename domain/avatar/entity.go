package avatar

// Characters whose avatar state is tracked.
const (
	CharacterChack = "chack"
	CharacterDrew  = "drew"
)

// Neutral is every avatar's starting emotion.
const Neutral = "Neutral"

// ChackEmotions are the expressions ChackGPT's avatar can show.
var ChackEmotions = []string{
	"Neutral",
	"Happy",
	"Excited",
	"Sad",
	"Angry",
	"Surprised",
	"Love",
	"Evil",
	"HeavyMetal",
	"Introspection",
}

// DrewEmotions are the expressions DrewGPT's avatar can show.
var DrewEmotions = []string{
	"Neutral",
	"Happy",
	"Excited",
	"Scared",
}
