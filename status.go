package paperlog

type Status string

const (
	Unread  Status = "unread"
	ToRead  Status = "to-read"
	Skimmed Status = "skimmed"
	Read    Status = "read"
)

// StatusCycle is the order in which a paper goes through the statuses.
var StatusCycle = [...]Status{Unread, ToRead, Skimmed, Read}

// ParseStatus returns the status named s, and false if s is not a status.
func ParseStatus(s string) (Status, bool) {
	for _, status := range StatusCycle {
		if string(status) == s {
			return status, true
		}
	}
	return Unread, false
}

func (s Status) index() int {
	for i, status := range StatusCycle {
		if status == s {
			return i
		}
	}
	return 0
}

// Next returns the status following s in the cycle. Unknown statuses are
// treated as unread.
func (s Status) Next() Status {
	return StatusCycle[(s.index()+1)%len(StatusCycle)]
}

// Transition returns the status following current and the update to write
// it. The read date is stamped when entering read and cleared when leaving
// it.
func Transition(current Status) (Status, Update) {
	if _, ok := ParseStatus(string(current)); !ok {
		current = Unread
	}
	next := current.Next()

	u := Update{Status: &next}
	if next == Read && current != Read {
		u.ReadAt = ReadAtStamp
	} else if next != Read {
		u.ReadAt = ReadAtClear
	}
	return next, u
}
