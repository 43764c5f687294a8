package model

import (
	apperrors "github.com/jwalitptl/patient-table/pkg/errors"
)

// Sex is the enumerated sex column. The empty value means unset.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
	SexOther  Sex = "Other"
)

// Patient is one row of the patient table. Every value is kept as entered;
// numeric-looking fields are interpreted only when sorting.
type Patient struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name" validate:"required"`
	LastName  string `json:"last_name" yaml:"last_name" validate:"required"`
	MedicalID string `json:"medical_id" yaml:"medical_id"`
	Age       string `json:"age" yaml:"age" validate:"omitempty,numeric"`
	Sex       Sex    `json:"sex" yaml:"sex" validate:"required,oneof=M F Other"`
}

// Field names an editable patient column.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldMedicalID Field = "medical_id"
	FieldAge       Field = "age"
	FieldSex       Field = "sex"
)

// Fields lists the editable columns in display order.
var Fields = []Field{FieldFirstName, FieldLastName, FieldMedicalID, FieldAge, FieldSex}

var fieldAliases = map[string]Field{
	"first_name": FieldFirstName,
	"firstName":  FieldFirstName,
	"last_name":  FieldLastName,
	"lastName":   FieldLastName,
	"medical_id": FieldMedicalID,
	"medicalId":  FieldMedicalID,
	"age":        FieldAge,
	"sex":        FieldSex,
}

// ParseField resolves a column name, accepting camelCase aliases.
func ParseField(name string) (Field, error) {
	if f, ok := fieldAliases[name]; ok {
		return f, nil
	}
	return "", apperrors.NewUnknownField(name)
}

// Valid reports whether f is one of the editable columns.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// IsText reports whether the column holds a free-text name.
func (f Field) IsText() bool {
	return f == FieldFirstName || f == FieldLastName
}

// IsNumeric reports whether the column is rendered as a number input.
func (f Field) IsNumeric() bool {
	return f == FieldMedicalID || f == FieldAge
}

// Get returns the value stored under f.
func (p Patient) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldMedicalID:
		return p.MedicalID
	case FieldAge:
		return p.Age
	case FieldSex:
		return string(p.Sex)
	}
	return ""
}

// With returns a copy of p with f set to value. Unknown fields leave the
// copy unchanged.
func (p Patient) With(f Field, value string) Patient {
	switch f {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldMedicalID:
		p.MedicalID = value
	case FieldAge:
		p.Age = value
	case FieldSex:
		p.Sex = Sex(value)
	}
	return p
}

// View is the state the presentation layer redraws from.
type View struct {
	Records    []Patient `json:"records"`
	Draft      *Patient  `json:"draft,omitempty"`
	Adding     bool      `json:"adding"`
	SortKey    Field     `json:"sort_key,omitempty"`
	SearchTerm string    `json:"search_term"`
}

type FieldUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type SortRequest struct {
	Field string `json:"field" binding:"required"`
}

type SearchRequest struct {
	Term string `json:"term"`
}
