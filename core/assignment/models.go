package assignment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/wordwise/core"
)

// Assignment types
const (
	TypeHomework  = "homework"
	TypeClasswork = "classwork"
)

// Assignment is owned by one student. Completed only ever goes from false to true.
type Assignment struct {
	ID          string   `json:"id"`
	StudentID   string   `json:"studentId"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Words       []string `json:"words"`
	Completed   bool     `json:"completed"`
}

func (a *Assignment) SetID(id string) { a.ID = id }

// NewAssignment contains information needed to assign work to a student.
type NewAssignment struct {
	StudentID   string   `json:"studentId" validate:"required,notblank"`
	Type        string   `json:"type" validate:"required,oneof=homework classwork"`
	Description string   `json:"description" validate:"required,notblank"`
	Words       []string `json:"words"`
}

func (na *NewAssignment) Validate(validate *validator.Validate, translator ut.Translator) error {
	na.Type = core.CleanString(na.Type, true /* lower */)
	na.Description = core.CleanString(na.Description)
	na.Words = core.CleanStrings(na.Words)

	return core.TranslateValidationErrors(validate.Struct(na), translator)
}

func (na NewAssignment) assignment() Assignment {
	words := na.Words
	if words == nil {
		words = []string{}
	}
	return Assignment{
		StudentID:   na.StudentID,
		Type:        na.Type,
		Description: na.Description,
		Words:       words,
	}
}
