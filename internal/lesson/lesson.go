// Package lesson provides the built-in typing drills.
package lesson

import "fmt"

// Lesson is a fixed practice text selectable by name.
type Lesson struct {
	Name  string
	Title string
	Text  string
}

var catalog = []Lesson{
	{
		Name:  "home-row",
		Title: "Home row",
		Text:  "sad lads ask dads; all flasks fall; a lass adds salads; dad shall ask; glad lads flag halls",
	},
	{
		Name:  "top-row",
		Title: "Top row",
		Text:  "we try to write proper quotes; your power party report; pretty quiet riots tire typists; true poetry requires quiet",
	},
	{
		Name:  "bottom-row",
		Title: "Bottom row",
		Text:  "zebras vex my jazz band; calm waves can move banks; six brave men mixed cocoa; vivid zinc boxes vanish",
	},
	{
		Name:  "numbers",
		Title: "Number row",
		Text:  "10 29 38 47 56 and 65 74 83 92 01; dial 555 0134 at 18:45; add 12 345 to 6 789 for 19 134",
	},
	{
		Name:  "symbols",
		Title: "Symbols",
		Text:  "(a + b) * c = d; x[0] != y[1]; turn 50% of $9.99 into #14 & @home; quote \"it\" or 'it'",
	},
	{
		Name:  "common-words",
		Title: "Common words",
		Text:  "the quick brown fox jumps over the lazy dog while the rain falls on the quiet town and the people watch from the old bridge",
	},
	{
		Name:  "code",
		Title: "Code",
		Text:  "for i := 0; i < len(xs); i++ { sum += xs[i] }; if err != nil { return fmt.Errorf(\"read: %w\", err) }",
	},
}

// List returns the built-in lessons in catalog order.
func List() []Lesson {
	out := make([]Lesson, len(catalog))
	copy(out, catalog)
	return out
}

// Find returns the lesson with the given name.
func Find(name string) (Lesson, error) {
	for _, l := range catalog {
		if l.Name == name {
			return l, nil
		}
	}
	return Lesson{}, fmt.Errorf("unknown lesson: %q", name)
}
