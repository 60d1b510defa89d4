package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Set of category names whose channels count toward activity
type Categories map[string]struct{}

// Tracker decides whether a channel belongs to one of the
// configured game categories
type Tracker struct {
	categories Categories
}

func NewTracker(names []string) Tracker {
	categories := Categories{}
	for _, name := range names {
		categories[name] = struct{}{}
	}
	return Tracker{categories}
}

// A channel is tracked iff it has a parent category whose name matches
// the configured list exactly, case included.
// Top-level channels are never tracked
func (tracker *Tracker) Tracked(channel *discordgo.Channel, parent *discordgo.Channel) bool {
	if channel == nil || channel.ParentID == "" || parent == nil {
		return false
	}
	_, ok := tracker.categories[parent.Name]
	return ok
}
