package session

import (
	"github.com/pkg/errors"
)

// NumSaveSlots is how many saved-game slots the profile holds.
const NumSaveSlots = 8

// SaveSlotNameMaxLen bounds a saved game's display name.
const SaveSlotNameMaxLen = 18

// NumTutorialMessages is the size of the shown-tutorial-message bitset
// persisted with a save.
const NumTutorialMessages = 30

// SaveSlot is one persisted saved-game record. Serialization lives
// outside the core; this is the decoded form the core consumes to
// reconstruct a session at level start.
type SaveSlot struct {
	Episode    int
	Level      int
	Difficulty Difficulty

	// TutorialMessagesShown is a bitset over the 30 tutorial message
	// ids; bit n set means message n has already been displayed and is
	// never shown again.
	TutorialMessagesShown uint32

	Name   string
	Weapon int
	Ammo   int
	Score  int
}

// ErrIncompatibleSaveSlot marks a save referencing content the current
// installation doesn't have (a shareware profile pointing at a
// registered-only episode). Non-fatal: the caller shows the "cannot
// order" script and returns to slot selection.
var ErrIncompatibleSaveSlot = errors.New("save slot references an unavailable episode")

// Validate checks the slot against the number of episodes this
// installation actually has.
func (s SaveSlot) Validate(availableEpisodes int) error {
	if s.Episode < 0 || s.Episode >= availableEpisodes {
		return errors.Wrapf(ErrIncompatibleSaveSlot, "episode %d of %d", s.Episode, availableEpisodes)
	}
	if s.Level < 0 {
		return errors.Wrapf(ErrIncompatibleSaveSlot, "level %d", s.Level)
	}
	return nil
}

// SessionID returns the (episode, level, difficulty) identity the slot
// resumes at.
func (s SaveSlot) SessionID() GameSessionID {
	return GameSessionID{Episode: s.Episode, Level: s.Level, Difficulty: s.Difficulty}
}

// TutorialShown reports whether tutorial message id is marked shown in
// the slot's bitset. Out-of-range ids read as shown so a corrupt save
// can't spam messages.
func (s SaveSlot) TutorialShown(id int) bool {
	if id < 0 || id >= NumTutorialMessages {
		return true
	}
	return s.TutorialMessagesShown&(1<<uint(id)) != 0
}

// MarkTutorialShown returns a copy of the bitset with message id set.
func MarkTutorialShown(bits uint32, id int) uint32 {
	if id < 0 || id >= NumTutorialMessages {
		return bits
	}
	return bits | 1<<uint(id)
}

// NewFromSave reconstructs an Orchestrator mid-episode from a validated
// save slot: the stage opens on the saved level's runner with the saved
// score carried in. Player-side state (weapon, ammo, tutorial bitset)
// is the caller's to restore onto the player it builds for the level.
func NewFromSave(s SaveSlot, levelsInEpisode, availableEpisodes int, hooks Hooks) (*Orchestrator, error) {
	if err := s.Validate(availableEpisodes); err != nil {
		return nil, err
	}
	name := s.Name
	if len(name) > SaveSlotNameMaxLen {
		name = name[:SaveSlotNameMaxLen]
	}
	o := New(s.SessionID(), levelsInEpisode, hooks)
	o.levelIndex = s.Level
	o.score = s.Score
	o.playerName = name
	return o, nil
}
