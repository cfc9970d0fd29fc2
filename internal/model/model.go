package model

import "time"

// PersonRecord is the canonical in-memory shape of a stored user. Country and
// City always hold the plain value; historical rows that stored label-value
// documents are normalized on read by the codec.
type PersonRecord struct {
	Id          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	DateOfBirth time.Time `json:"dateOfBirth" db:"date_of_birth"`
	Country     string    `json:"country"     db:"country"`
	City        string    `json:"city"        db:"city"`
}

// Option is a label-value pair as consumed by the select widgets. For the
// fixed country and city choices the label always equals the value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// IsZero reports whether no choice has been made.
func (o Option) IsZero() bool {
	return o.Value == ""
}

// FormDraft is the transient edit shape held by a form session: the date of
// birth is split into independent numeric fields and the country and city are
// label-value pairs, mirroring the form inputs. A zero FormDraft is the empty
// draft used for Add mode.
type FormDraft struct {
	Id      string `json:"id"`
	Name    string `json:"name"    validate:"required"`
	Year    int    `json:"year"    validate:"min=1923,max=2023"`
	Month   int    `json:"month"   validate:"min=1,max=12"`
	Day     int    `json:"day"     validate:"min=1,max=31"`
	Country Option `json:"country"`
	City    Option `json:"city"`
}

// ViewRow is the read-only table projection of a PersonRecord. Dob is the
// calendar date formatted as 2006-01-02.
type ViewRow struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Dob     string `json:"dob"`
	Country string `json:"country"`
	City    string `json:"city"`
}
