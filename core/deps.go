package core

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/wordwise/core/docstore"
)

// Deps is handed to every screen controller when it is built.
type Deps struct {
	Store      docstore.Store
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     Logger
}

// Navigator performs client-side route changes.
type Navigator interface {
	NavigateTo(path string)
}
