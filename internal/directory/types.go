package directory

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one entity fetched from the directory-of-record. The id is
// immutable for the record's lifetime and is the sole merge key used by
// the sync engine. Records are read-only inputs; nothing here is ever
// written back.
type Record struct {
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Properties     map[string]Property `json:"properties"`
}

// Prop returns the named property, or a zero Property when absent.
// The zero Property decodes to nil/empty through every accessor, so
// callers can chain without nil checks.
func (r *Record) Prop(name string) Property {
	return r.Properties[name]
}

// Kind is the type discriminator carried by every property value.
type Kind string

// Supported property kinds. Anything else decodes to nil — the lenient
// policy that keeps unrecognized remote schema additions from aborting
// a sync.
const (
	KindTitle       Kind = "title"
	KindRichText    Kind = "rich_text"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi_select"
	KindPeople      Kind = "people"
	KindDate        Kind = "date"
	KindCheckbox    Kind = "checkbox"
	KindURL         Kind = "url"
	KindEmail       Kind = "email"
	KindPhoneNumber Kind = "phone_number"
	KindNumber      Kind = "number"
	KindStatus      Kind = "status"
	KindRelation    Kind = "relation"
)

// Person is one entry of a people-typed property: the external contact
// reference id plus whatever display name and email the directory exposes.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Extra struct {
		Email string `json:"email"`
	} `json:"person"`
}

// Email returns the contact's email, empty when the directory hides it.
func (p Person) Email() string {
	return p.Extra.Email
}

// textRun is one segment of a rich text or title value. Only the
// rendered plain text matters to the sync engine.
type textRun struct {
	PlainText string `json:"plain_text"`
}

type selectValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type relationRef struct {
	ID string `json:"id"`
}

// Property is one type-tagged value from a record's property bag. The
// payload is kept raw and decoded on access so that a malformed value in
// one property fails only the record that reads it, not the whole fetch.
type Property struct {
	Kind Kind
	raw  json.RawMessage
}

// UnmarshalJSON captures the type discriminator and the raw payload.
// Unknown discriminators are kept as-is; they decode to nil later.
func (p *Property) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("directory: decoding property envelope: %w", err)
	}

	p.Kind = Kind(head.Type)
	p.raw = append([]byte(nil), data...)

	return nil
}

// decode converts the property into its native value. This is the single
// exhaustive match over the closed kind set; the default arm returns
// (nil, nil) to preserve the lenient-decode policy.
func (p Property) decode() (any, error) {
	if len(p.raw) == 0 {
		return nil, nil
	}

	switch p.Kind {
	case KindTitle:
		var v struct {
			Title []textRun `json:"title"`
		}

		return firstPlainText(p.raw, &v, func() []textRun { return v.Title })

	case KindRichText:
		var v struct {
			RichText []textRun `json:"rich_text"`
		}

		return firstPlainText(p.raw, &v, func() []textRun { return v.RichText })

	case KindSelect:
		var v struct {
			Select *selectValue `json:"select"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil || v.Select == nil {
			return nil, nil
		}

		return v.Select.Name, nil

	case KindStatus:
		var v struct {
			Status *selectValue `json:"status"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil || v.Status == nil {
			return nil, nil
		}

		return v.Status.Name, nil

	case KindMultiSelect:
		var v struct {
			MultiSelect []selectValue `json:"multi_select"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil {
			return nil, nil
		}

		labels := make([]string, 0, len(v.MultiSelect))
		for _, s := range v.MultiSelect {
			labels = append(labels, s.Name)
		}

		return labels, nil

	case KindPeople:
		var v struct {
			People []Person `json:"people"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil {
			return nil, nil
		}

		return v.People, nil

	case KindDate:
		var v struct {
			Date *dateValue `json:"date"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil || v.Date == nil || v.Date.Start == "" {
			return nil, nil
		}

		t, err := parseDate(v.Date.Start)
		if err != nil {
			return nil, err
		}

		return &t, nil

	case KindCheckbox:
		var v struct {
			Checkbox bool `json:"checkbox"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil {
			return nil, nil
		}

		return v.Checkbox, nil

	case KindURL:
		return stringPayload(p.raw, "url")

	case KindEmail:
		return stringPayload(p.raw, "email")

	case KindPhoneNumber:
		return stringPayload(p.raw, "phone_number")

	case KindNumber:
		var v struct {
			Number *float64 `json:"number"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil || v.Number == nil {
			return nil, nil
		}

		return *v.Number, nil

	case KindRelation:
		var v struct {
			Relation []relationRef `json:"relation"`
		}

		if err := json.Unmarshal(p.raw, &v); err != nil {
			return nil, nil
		}

		ids := make([]string, 0, len(v.Relation))
		for _, ref := range v.Relation {
			ids = append(ids, ref.ID)
		}

		return ids, nil

	default:
		// Unrecognized discriminator: lenient decode, never an error.
		return nil, nil
	}
}

// firstPlainText decodes a rich/title payload and returns the first run's
// rendered text, or nil when the field is empty.
func firstPlainText(raw json.RawMessage, dest any, runs func() []textRun) (any, error) {
	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, nil
	}

	rs := runs()
	if len(rs) == 0 {
		return nil, nil
	}

	return rs[0].PlainText, nil
}

// stringPayload decodes a passthrough string payload (url, email, phone).
func stringPayload(raw json.RawMessage, field string) (any, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(m[field], &s); err != nil {
		return nil, nil
	}

	return s, nil
}

// parseDate accepts both full timestamps and bare dates, which the
// directory mixes freely depending on whether the field carries a time.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("directory: parsing date %q: %w", s, err)
	}

	return t, nil
}

// --- Typed accessors ---
//
// Each accessor runs the property through decode and returns the zero
// value on kind mismatch. Only DateValue surfaces an error, because a
// malformed date is record data worth failing on; everything else
// degrades to empty per the lenient policy.

// PlainText returns the text of a title, rich text, url, email, or phone
// property. Empty for everything else.
func (p Property) PlainText() string {
	v, _ := p.decode()

	s, _ := v.(string)

	return s
}

// SelectLabel returns the label of a select or status property.
func (p Property) SelectLabel() string {
	if p.Kind != KindSelect && p.Kind != KindStatus {
		return ""
	}

	v, _ := p.decode()

	s, _ := v.(string)

	return s
}

// MultiSelectLabels returns the labels of a multi-select property.
func (p Property) MultiSelectLabels() []string {
	v, _ := p.decode()

	labels, _ := v.([]string)
	if p.Kind != KindMultiSelect {
		return nil
	}

	return labels
}

// People returns the contact references of a people property.
func (p Property) People() []Person {
	v, _ := p.decode()

	people, _ := v.([]Person)

	return people
}

// DateValue returns the timestamp of a date property, nil when absent.
func (p Property) DateValue() (*time.Time, error) {
	v, err := p.decode()
	if err != nil {
		return nil, err
	}

	t, _ := v.(*time.Time)

	return t, nil
}

// CheckboxValue returns the boolean of a checkbox property.
func (p Property) CheckboxValue() bool {
	v, _ := p.decode()

	b, _ := v.(bool)

	return b
}

// NumberValue returns the numeric value of a number property, 0 when absent.
func (p Property) NumberValue() float64 {
	v, _ := p.decode()

	n, _ := v.(float64)

	return n
}

// RelationIDs returns the referenced record ids of a relation property.
func (p Property) RelationIDs() []string {
	if p.Kind != KindRelation {
		return nil
	}

	v, _ := p.decode()

	ids, _ := v.([]string)

	return ids
}
