// Package word implements the teacher dashboard: the list of vocabulary words and the form adding new ones.
package word

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
	"github.com/trezcool/wordwise/core/listsync"
)

const (
	FetchErrorMessage = "Could not load words. Please reload the page."
	AddErrorMessage   = "Could not add the word. Please try again."
	MissingFieldsText = "Please enter both a word and its definition."
)

// DashboardState is rendered by the dashboard screen.
type DashboardState struct {
	listsync.State[Word]
	Form  NewWord `json:"form"`
	Alert string  `json:"alert,omitempty"`
}

// Dashboard is the teacher dashboard controller.
type Dashboard struct {
	Form listsync.Form[NewWord]

	deps  core.Deps
	words docstore.Collection[Word]
	list  *listsync.List[Word]

	mu    sync.Mutex
	alert string
}

func NewDashboard(deps core.Deps) *Dashboard {
	return &Dashboard{
		deps:  deps,
		words: docstore.NewCollection[Word](deps.Store, docstore.Words),
		list:  listsync.New[Word](deps.Logger, FetchErrorMessage),
	}
}

func (d *Dashboard) fetch(ctx context.Context) ([]Word, error) {
	return d.words.All(ctx)
}

// Activate loads the words.
func (d *Dashboard) Activate(ctx context.Context) error {
	return d.list.Refresh(ctx, d.fetch)
}

// Detach drops any fetch still in flight.
func (d *Dashboard) Detach() {
	d.list.Detach()
}

// AddWord stores the form content, clears the form and reloads the list.
// An invalid form is rejected with an alert before anything is sent to the store.
// A failed write keeps the form as typed. The returned error is nil once the word is stored.
func (d *Dashboard) AddWord(ctx context.Context) error {
	d.setAlert("")

	nw := d.Form.Value()
	if err := nw.Validate(d.deps.Validate, d.deps.Translator); err != nil {
		d.setAlert(MissingFieldsText)
		return err
	}

	id, err := d.words.Add(ctx, nw.word())
	if err != nil {
		d.setAlert(AddErrorMessage)
		d.deps.Logger.Error(AddErrorMessage, errors.Wrap(err, "adding word"))
		return err
	}

	d.Form.Clear()
	// the word is stored: a failed reload only shows up in the list error
	_ = d.list.Reconcile(ctx, listsync.Write[Word]{ID: id}, sameID, d.fetch)
	return nil
}

func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	alert := d.alert
	d.mu.Unlock()
	return DashboardState{State: d.list.State(), Form: d.Form.Value(), Alert: alert}
}

func (d *Dashboard) setAlert(msg string) {
	d.mu.Lock()
	d.alert = msg
	d.mu.Unlock()
}

func sameID(w Word, id string) bool { return w.ID == id }
