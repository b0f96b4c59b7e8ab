package availability

import (
	"fmt"
	"sort"
	"time"
)

// TimeSlot is a stretch of a day during which the same participants are active.
type TimeSlot struct {
	StartMinute  int
	EndMinute    int
	Participants []string
	IsOverlap    bool
}

// Bounds returns the slot as instants on day.
func (s TimeSlot) Bounds(day time.Time) (time.Time, time.Time) {
	return MinuteTime(day, s.StartMinute), MinuteTime(day, s.EndMinute)
}

type eventKind int

// endEvent sorts before startEvent so back-to-back intervals never overlap.
const (
	endEvent eventKind = iota
	startEvent
)

type event struct {
	minute int
	kind   eventKind
	owner  string
}

// ComputeSlots sweeps the intervals of a single day and returns the slots they
// cover in chronological order. Gaps with no active owner are not returned.
//
// Every interval must satisfy 0 <= StartMinute < EndMinute <= MinutesPerDay.
// ClampToDay guarantees this; anything else is a programming error and panics.
func ComputeSlots(intervals []ClampedInterval) []TimeSlot {
	slots := []TimeSlot{}
	if len(intervals) == 0 {
		return slots
	}

	events := make([]event, 0, 2*len(intervals))
	for _, iv := range intervals {
		if iv.StartMinute < 0 || iv.EndMinute > MinutesPerDay || iv.StartMinute >= iv.EndMinute {
			panic(fmt.Sprintf("availability: interval [%d, %d) of owner %q was not clamped",
				iv.StartMinute, iv.EndMinute, iv.OwnerID))
		}
		events = append(events,
			event{minute: iv.StartMinute, kind: startEvent, owner: iv.OwnerID},
			event{minute: iv.EndMinute, kind: endEvent, owner: iv.OwnerID},
		)
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.minute != b.minute {
			return a.minute < b.minute
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.owner < b.owner
	})

	active := make(map[string]struct{})
	last := -1
	for _, ev := range events {
		if len(active) > 0 && last >= 0 && ev.minute > last {
			slots = append(slots, newSlot(last, ev.minute, active))
		}
		switch ev.kind {
		case startEvent:
			active[ev.owner] = struct{}{}
		case endEvent:
			delete(active, ev.owner)
		}
		last = ev.minute
	}

	return slots
}

func newSlot(start, end int, active map[string]struct{}) TimeSlot {
	participants := make([]string, 0, len(active))
	for owner := range active {
		participants = append(participants, owner)
	}
	sort.Strings(participants)
	return TimeSlot{
		StartMinute:  start,
		EndMinute:    end,
		Participants: participants,
		IsOverlap:    len(participants) >= 2,
	}
}

// MergeByOwner unions each owner's touching or overlapping intervals. Without
// it, an owner with two overlapping blocks drops out of the active set when the
// first one ends. A merged interval keeps the polarity of its earliest member
// and loses its block id.
func MergeByOwner(intervals []ClampedInterval) []ClampedInterval {
	if len(intervals) < 2 {
		return intervals
	}

	sorted := make([]ClampedInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].OwnerID != sorted[j].OwnerID {
			return sorted[i].OwnerID < sorted[j].OwnerID
		}
		return sorted[i].StartMinute < sorted[j].StartMinute
	})

	merged := []ClampedInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		current := &merged[len(merged)-1]
		if iv.OwnerID == current.OwnerID && iv.StartMinute <= current.EndMinute {
			if iv.EndMinute > current.EndMinute {
				current.EndMinute = iv.EndMinute
			}
			current.BlockID = ""
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// DaySlots clamps blocks to day, merges each owner's intervals and sweeps them.
func DaySlots(blocks []Block, day time.Time) []TimeSlot {
	return ComputeSlots(MergeByOwner(ClampBlocks(blocks, day)))
}

func OverlapsOnly(slots []TimeSlot) []TimeSlot {
	overlaps := []TimeSlot{}
	for _, s := range slots {
		if s.IsOverlap {
			overlaps = append(overlaps, s)
		}
	}
	return overlaps
}
