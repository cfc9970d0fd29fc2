// Package codec converts between the persisted user record shape and the
// form draft shape, and is the single place where draft validation happens:
// a draft that passes ToRecord can never produce an invalid PersonRecord.
package codec

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gitlab.com/william.mucha/users-service/internal/catalog"
	"gitlab.com/william.mucha/users-service/internal/model"
)

// FieldError names a single invalid draft field together with the message
// shown next to the form input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries all field-level problems of a submitted draft.
type ValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid draft: " + strings.Join(msgs, ", ")
}

// Codec converts between PersonRecord and FormDraft.
type Codec struct {
	validate *validator.Validate
}

// New returns a Codec with the draft validation rules registered.
func New() *Codec {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateChoices, model.FormDraft{})
	return &Codec{validate: v}
}

// validateChoices enforces the rules the numeric tags cannot express: country
// and city must be chosen, the country must be known to the catalog, and the
// city must belong to the selected country.
func validateChoices(sl validator.StructLevel) {
	draft := sl.Current().Interface().(model.FormDraft)
	switch {
	case draft.Country.IsZero():
		sl.ReportError(draft.Country, "Country", "Country", "required", "")
	case len(catalog.CitiesFor(draft.Country.Value)) == 0:
		sl.ReportError(draft.Country, "Country", "Country", "oneof", "")
	}
	switch {
	case draft.City.IsZero():
		sl.ReportError(draft.City, "City", "City", "required", "")
	case !draft.Country.IsZero() && !catalog.Contains(draft.Country.Value, draft.City.Value):
		sl.ReportError(draft.City, "City", "City", "oneof", "")
	}
}

// ToDraft builds the form draft for a record. A nil record yields the empty
// draft used by Add mode; otherwise the date of birth is split into its own
// calendar fields and country and city are mirrored into label-value pairs.
func (c *Codec) ToDraft(rec *model.PersonRecord) model.FormDraft {
	if rec == nil {
		return model.FormDraft{}
	}
	dob := rec.DateOfBirth
	return model.FormDraft{
		Id:      rec.Id,
		Name:    rec.Name,
		Year:    dob.Year(),
		Month:   int(dob.Month()),
		Day:     dob.Day(),
		Country: model.Option{Value: rec.Country, Label: rec.Country},
		City:    model.Option{Value: rec.City, Label: rec.City},
	}
}

// ToRecord validates the draft and reassembles the persisted record shape.
// On invalid input it returns a *ValidationError listing every bad field and
// an empty record.
//
// The date is rebuilt with time.Date, which normalizes a day overflowing the
// month (April 31 becomes May 1). The original form accepted such drafts the
// same way, so the leniency is kept deliberately.
func (c *Codec) ToRecord(draft model.FormDraft) (model.PersonRecord, error) {
	if err := c.validate.Struct(draft); err != nil {
		return model.PersonRecord{}, asValidationError(err)
	}
	return model.PersonRecord{
		Id:          draft.Id,
		Name:        draft.Name,
		DateOfBirth: time.Date(draft.Year, time.Month(draft.Month), draft.Day, 0, 0, 0, 0, time.UTC),
		Country:     draft.Country.Value,
		City:        draft.City.Value,
	}, nil
}

// asValidationError maps validator errors onto the form's field messages.
func asValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.ToLower(fe.StructField()),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Name":
		return "Name is required"
	case "Year":
		return "Year is required (1923-2023)"
	case "Month":
		return "Month is required (1-12)"
	case "Day":
		return "Day is required (1-31)"
	case "Country":
		if fe.Tag() == "oneof" {
			return "Country is not a supported country"
		}
		return "Country is required"
	case "City":
		if fe.Tag() == "oneof" {
			return "City is not valid for the selected country"
		}
		return "City is required"
	}
	return "invalid value"
}

// NormalizeChoice returns the plain value of a persisted country or city
// field. Rows written through the older code path stored a JSON label-value
// document instead of the bare text, so both shapes are accepted on read.
// New writes always store the plain value.
func NormalizeChoice(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw
	}
	var opt model.Option
	if err := json.Unmarshal([]byte(trimmed), &opt); err != nil || opt.Value == "" {
		return raw
	}
	return opt.Value
}

// Row projects a record into its read-only table row.
func Row(rec model.PersonRecord) model.ViewRow {
	return model.ViewRow{
		Id:      rec.Id,
		Name:    rec.Name,
		Dob:     rec.DateOfBirth.Format("2006-01-02"),
		Country: rec.Country,
		City:    rec.City,
	}
}

// Rows projects a record list into table rows, preserving store order.
func Rows(recs []model.PersonRecord) []model.ViewRow {
	rows := make([]model.ViewRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, Row(rec))
	}
	return rows
}
