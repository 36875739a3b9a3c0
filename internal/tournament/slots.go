package tournament

import (
	"sort"
	"strings"
)

type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotHalfFilled
	SlotFilled
)

var slotStateNames = map[SlotState]string{
	SlotEmpty:      "empty",
	SlotHalfFilled: "half_filled",
	SlotFilled:     "filled",
}

func (s SlotState) String() string {
	if name, ok := slotStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Slot is the player setup of one empty knockout match. Player1 is only set
// from SlotHalfFilled on, Player2 only in SlotFilled.
type Slot struct {
	GroupID     int64
	GroupNumber int
	State       SlotState
	Player1     string
	Player2     string
}

func EmptySlot(g Group) Slot {
	return Slot{GroupID: g.ID, GroupNumber: g.GroupNumber, State: SlotEmpty}
}

func (s Slot) Pair() []string {
	return []string{s.Player1, s.Player2}
}

func (s Slot) has(player string) bool {
	switch s.State {
	case SlotHalfFilled:
		return s.Player1 == player
	case SlotFilled:
		return s.Player1 == player || s.Player2 == player
	}
	return false
}

func (s Slot) place(player string) Slot {
	switch s.State {
	case SlotEmpty:
		s.State = SlotHalfFilled
		s.Player1 = player
	case SlotHalfFilled:
		s.State = SlotFilled
		s.Player2 = player
	}
	return s
}

// SlotSetup tracks the slots of all empty knockout matches, keyed by group id.
type SlotSetup map[int64]Slot

// ReconcileSlots derives the setup for a new snapshot from the previous one.
// Groups that still have no participants keep their slot, half filled ones
// included. Groups that got participants drop out, new empty groups start as
// SlotEmpty. A filled slot whose group came back empty lost its commit and
// starts over.
func ReconcileSlots(prev SlotSetup, t *Tournament) SlotSetup {
	next := make(SlotSetup)
	if t == nil {
		return next
	}
	for _, g := range t.Groups {
		if !g.IsEmpty() {
			continue
		}
		slot, ok := prev[g.ID]
		if !ok || slot.State == SlotFilled {
			slot = EmptySlot(g)
		}
		slot.GroupNumber = g.GroupNumber
		next[g.ID] = slot
	}
	return next
}

func (s SlotSetup) Clone() SlotSetup {
	c := make(SlotSetup, len(s))
	for id, slot := range s {
		c[id] = slot
	}
	return c
}

// Ordered returns the slots by group number.
func (s SlotSetup) Ordered() []Slot {
	slots := make([]Slot, 0, len(s))
	for _, slot := range s {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].GroupNumber < slots[j].GroupNumber
	})
	return slots
}

func (s SlotSetup) Contains(player string) bool {
	for _, slot := range s {
		if slot.has(player) {
			return true
		}
	}
	return false
}

// HasEmptySlots reports whether any slot is not yet filled.
func (s SlotSetup) HasEmptySlots() bool {
	for _, slot := range s {
		if slot.State != SlotFilled {
			return true
		}
	}
	return false
}

// NextOpen is the open slot with the lowest group number.
func (s SlotSetup) NextOpen() (Slot, bool) {
	for _, slot := range s.Ordered() {
		if slot.State != SlotFilled {
			return slot, true
		}
	}
	return Slot{}, false
}

// Assign works out where player goes next without changing the setup. The
// returned slot is SlotFilled when the placement completes a pair, and is only
// stored once the pair has been committed.
func (s SlotSetup) Assign(player string) (Slot, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return Slot{}, ErrEmptyPlayerName
	}
	if s.Contains(player) {
		return Slot{}, ErrPlayerAlreadyPlaced
	}
	open, ok := s.NextOpen()
	if !ok {
		return Slot{}, ErrAllSlotsFilled
	}
	return open.place(player), nil
}
