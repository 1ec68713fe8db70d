package domain

// Status is the lifecycle tag shared by bookings and orders.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPending, StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an admin may move a record from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TimeSlot is one of the fixed one-hour call windows.
type TimeSlot string

var TimeSlots = []TimeSlot{
	"09:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	"14:00 - 15:00",
	"15:00 - 16:00",
	"16:00 - 17:00",
}

func ParseTimeSlot(s string) (TimeSlot, bool) {
	for _, ts := range TimeSlots {
		if string(ts) == s {
			return ts, true
		}
	}
	return "", false
}

// Index is the slot's position in TimeSlots, or -1.
func (t TimeSlot) Index() int {
	for i, ts := range TimeSlots {
		if ts == t {
			return i
		}
	}
	return -1
}
