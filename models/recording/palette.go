package recording

import "fmt"

type Mood struct {
	Emoji string
	Label string
}

// String is the form stored in Recording.Mood.
func (m Mood) String() string {
	return fmt.Sprintf("%s %s", m.Emoji, m.Label)
}

var Moods = []Mood{
	{Emoji: "😘", Label: "Loving"},
	{Emoji: "🥰", Label: "Sweet"},
	{Emoji: "😊", Label: "Happy"},
	{Emoji: "🤗", Label: "Warm"},
	{Emoji: "😴", Label: "Sleepy"},
	{Emoji: "🎵", Label: "Musical"},
}

func DefaultMood() Mood {
	return Moods[0]
}

// LookupMood matches a palette entry by label (case sensitive) or by its
// stored form.
func LookupMood(s string) (Mood, bool) {
	for _, m := range Moods {
		if s == m.Label || s == m.String() || s == m.Emoji {
			return m, true
		}
	}
	return Mood{}, false
}

// ReactionEmojis is the palette offered by the client.
var ReactionEmojis = []string{"❤️", "😍", "🥰", "😘", "💕", "🔥"}

// MaxEmojiBytes matches the reactions.emoji column width.
const MaxEmojiBytes = 20
