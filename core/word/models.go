package word

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/wordwise/core"
)

// Word is a vocabulary entry entered by a teacher. It is never changed once stored.
type Word struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Definition string `json:"definition"`
	Sentence   string `json:"sentence,omitempty"`
}

func (w *Word) SetID(id string) { w.ID = id }

// NewWord is the dashboard form.
type NewWord struct {
	Text       string `json:"text" validate:"required,notblank"`
	Definition string `json:"definition" validate:"required,notblank"`
	Sentence   string `json:"sentence"`
}

func (nw *NewWord) Validate(validate *validator.Validate, translator ut.Translator) error {
	nw.Text = core.CleanString(nw.Text)
	nw.Definition = core.CleanString(nw.Definition)
	nw.Sentence = core.CleanString(nw.Sentence)

	return core.TranslateValidationErrors(validate.Struct(nw), translator)
}

func (nw NewWord) word() Word {
	return Word{Text: nw.Text, Definition: nw.Definition, Sentence: nw.Sentence}
}
