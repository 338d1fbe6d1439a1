package ledger

// Direction tells whether the business owes or is owed the obligation
type Direction string

const (
	DirectionPayable    Direction = "PAYABLE"    // Owed to a supplier
	DirectionReceivable Direction = "RECEIVABLE" // Owed by a client
)

// IsValid checks if the direction is a known value
func (d Direction) IsValid() bool {
	switch d {
	case DirectionPayable, DirectionReceivable:
		return true
	}
	return false
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// DocumentPrefix returns the prefix used for generated document numbers
func (d Direction) DocumentPrefix() string {
	if d == DirectionReceivable {
		return "AR"
	}
	return "AP"
}

// Status is shared by obligations and installments.
// Both move OPEN -> SETTLED and never back.
type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusSettled Status = "SETTLED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusSettled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true when no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusSettled
}

// DeriveStatus maps the installment statuses of one obligation to the
// obligation status: SETTLED iff every installment is SETTLED.
// An empty set is OPEN since an obligation always has at least one installment.
func DeriveStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusOpen
	}
	for _, s := range statuses {
		if s != StatusSettled {
			return StatusOpen
		}
	}
	return StatusSettled
}
