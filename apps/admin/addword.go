package main

import (
	"context"
	"fmt"

	"github.com/trezcool/wordwise/core/word"
)

// addWord goes through the dashboard, like a teacher would.
func (cli *commandLine) addWord(text, definition, sentence string) error {
	dash := word.NewDashboard(cli.deps)
	dash.Form.Set(word.NewWord{Text: text, Definition: definition, Sentence: sentence})
	if err := dash.AddWord(context.Background()); err != nil {
		return err
	}
	fmt.Printf("added %q, %d words in total\n", text, len(dash.State().Items))
	return nil
}
