package spacetraveling

import (
	"strings"

	"github.com/eringen/spacetraveling/richtext"
	"github.com/eringen/spacetraveling/views"
)

// WordsPerMinute is the reading speed assumed by ReadingTime.
const WordsPerMinute = 200

// ReadingTime estimates whole minutes to read sections: every heading and the
// plain text of every body, split on whitespace, divided by WordsPerMinute and
// rounded up. Empty content reads in 0 minutes.
func ReadingTime(sections []views.Section) int {
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(s.Heading)
		b.WriteByte(' ')
		b.WriteString(richtext.AsText(s.Body))
		b.WriteByte(' ')
	}
	return Minutes(len(strings.Fields(b.String())))
}

// Minutes converts a word count to reading minutes, rounding up.
func Minutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
