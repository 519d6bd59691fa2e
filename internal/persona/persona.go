package persona

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for identifiers outside the catalog.
var ErrNotFound = errors.New("persona not found")

// Catalog identifiers.
const (
	ConcernedElderly   = "concerned_elderly"
	TechUnsavvy        = "tech_unsavvy"
	BusyProfessional   = "busy_professional"
	CuriousStudent     = "curious_student"
	CautiousParent     = "cautious_parent"
	DesperateJobSeeker = "desperate_job_seeker"
	GullibleBeliever   = "gullible_believer"
)

// Fallback is used defensively when a stored persona id no longer resolves.
const Fallback = TechUnsavvy

// Persona is an immutable catalog entry. Traits describe who the character
// is; the stylistic fields bias how replies get written.
type Persona struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Background     string   `json:"background"`
	Anxiety        string   `json:"anxiety"`      // low | medium | high
	TechLiteracy   string   `json:"techLiteracy"` // low | medium | high
	Verbosity      string   `json:"verbosity"`
	SentenceLength string   `json:"sentenceLength"`
	FillerWords    bool     `json:"fillerWords"`
	TyposAllowed   bool     `json:"typosAllowed"`
	StyleNotes     []string `json:"styleNotes"`
}

var catalog = []Persona{
	{
		ID:             ConcernedElderly,
		Name:           "Savitri",
		Background:     "68-year-old retired schoolteacher who worries about her pension and takes anything official-sounding seriously",
		Anxiety:        "high",
		TechLiteracy:   "low",
		Verbosity:      "rambling",
		SentenceLength: "short",
		FillerWords:    true,
		TyposAllowed:   true,
		StyleNotes: []string{
			"frets about losing access to her pension account",
			"asks for steps to be repeated slowly",
			"mentions needing her grandson's help with the phone",
		},
	},
	{
		ID:             TechUnsavvy,
		Name:           "Ramesh",
		Background:     "middle-aged kirana shop owner who uses his phone only for calls and the occasional photo",
		Anxiety:        "medium",
		TechLiteracy:   "low",
		Verbosity:      "measured",
		SentenceLength: "medium",
		FillerWords:    true,
		TyposAllowed:   true,
		StyleNotes: []string{
			"confuses apps, links and messages with each other",
			"asks exactly which buttons to press",
			"misreads technical words slightly",
		},
	},
	{
		ID:             BusyProfessional,
		Name:           "Priya",
		Background:     "marketing manager who answers messages in the gaps between meetings",
		Anxiety:        "low",
		TechLiteracy:   "medium",
		Verbosity:      "terse",
		SentenceLength: "short",
		FillerWords:    false,
		TyposAllowed:   true,
		StyleNotes: []string{
			"replies briefly and asks the sender to get to the point",
			"postpones anything that takes time",
			"asks for details in writing so she can check later",
		},
	},
	{
		ID:             CuriousStudent,
		Name:           "Arjun",
		Background:     "college student who finds offers interesting and asks a lot of questions",
		Anxiety:        "low",
		TechLiteracy:   "high",
		Verbosity:      "chatty",
		SentenceLength: "medium",
		FillerWords:    false,
		TyposAllowed:   true,
		StyleNotes: []string{
			"asks how things work out of genuine curiosity",
			"compares the offer with things he has read online",
			"never commits to anything straight away",
		},
	},
	{
		ID:             CautiousParent,
		Name:           "Meena",
		Background:     "homemaker who double-checks anything that touches the family's savings",
		Anxiety:        "medium",
		TechLiteracy:   "low",
		Verbosity:      "measured",
		SentenceLength: "medium",
		FillerWords:    true,
		TyposAllowed:   false,
		StyleNotes: []string{
			"wants to ask her husband before acting",
			"asks whether this is really from the bank",
			"worries aloud about the children's school fees",
		},
	},
	{
		ID:             DesperateJobSeeker,
		Name:           "Vikas",
		Background:     "out of work for six months and eager about any offer that pays",
		Anxiety:        "high",
		TechLiteracy:   "medium",
		Verbosity:      "chatty",
		SentenceLength: "medium",
		FillerWords:    false,
		TyposAllowed:   true,
		StyleNotes: []string{
			"responds quickly and enthusiastically",
			"asks when payment or joining can happen",
			"volunteers that he needs the money soon",
		},
	},
	{
		ID:             GullibleBeliever,
		Name:           "Mohan",
		Background:     "retiree who trusts anything that sounds official and never questions authority",
		Anxiety:        "medium",
		TechLiteracy:   "low",
		Verbosity:      "rambling",
		SentenceLength: "long",
		FillerWords:    true,
		TyposAllowed:   true,
		StyleNotes: []string{
			"thanks the sender for helping him",
			"takes official-sounding language at face value",
			"volunteers that his savings sit in a fixed deposit",
		},
	},
}

var byID = func() map[string]Persona {
	m := make(map[string]Persona, len(catalog))
	for _, p := range catalog {
		m[p.ID] = p
	}
	return m
}()

// All returns the catalog in declaration order.
func All() []Persona {
	return append([]Persona(nil), catalog...)
}

// Get returns the persona for id, or ErrNotFound for unknown identifiers.
func Get(id string) (Persona, error) {
	p, ok := byID[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	p.StyleNotes = append([]string(nil), p.StyleNotes...)
	return p, nil
}
