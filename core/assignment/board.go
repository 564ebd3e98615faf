// Package assignment implements the student assignments screen.
package assignment

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
	"github.com/trezcool/wordwise/core/listsync"
	"github.com/trezcool/wordwise/core/user"
)

const (
	LoginPromptText    = "Please log in to view assignments."
	EmptyText          = "No assignments yet. Check back later!"
	CompletedNotice    = "Assignment completed! 🎉"
	FetchErrorMessage  = "Could not load assignments. Please reload the page."
	UpdateErrorMessage = "Could not update the assignment. Please try again."
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrNotFound      = errors.New("assignment not found")
)

// BoardState is rendered by the assignments screen.
type BoardState struct {
	listsync.State[Assignment]
	LoginRequired bool   `json:"login_required"`
	Notice        string `json:"notice,omitempty"`
}

// Board is the student assignments controller. It only shows the assignments of the signed-in student.
type Board struct {
	deps        core.Deps
	assignments docstore.Collection[Assignment]
	list        *listsync.List[Assignment]

	mu     sync.Mutex
	user   *user.User
	notice string
}

func NewBoard(deps core.Deps) *Board {
	return &Board{
		deps:        deps,
		assignments: docstore.NewCollection[Assignment](deps.Store, docstore.Assignments),
		list:        listsync.New[Assignment](deps.Logger, FetchErrorMessage),
	}
}

// Activate loads the assignments of usr. Without a user nothing is fetched and the login prompt is shown.
func (b *Board) Activate(ctx context.Context, usr *user.User) error {
	b.mu.Lock()
	prev := b.user
	b.user = usr
	b.notice = ""
	b.mu.Unlock()

	if usr == nil || (prev != nil && prev.ID != usr.ID) {
		b.list.Reset()
	}
	if usr == nil {
		return nil
	}
	return b.list.Refresh(ctx, b.fetcher(usr.ID))
}

// Attach follows the session: the board reloads on every sign in and sign out.
func (b *Board) Attach(ctx context.Context, session *user.Session) (detach func()) {
	unsubscribe := session.OnUserChanged(func(usr *user.User) {
		_ = b.Activate(ctx, usr)
	})
	return func() {
		unsubscribe()
		b.list.Detach()
	}
}

// Detach drops any fetch still in flight.
func (b *Board) Detach() {
	b.list.Detach()
}

// MarkCompleted completes one of the listed assignments and patches it locally.
// Completing an assignment twice does not touch the store again.
func (b *Board) MarkCompleted(ctx context.Context, id string) error {
	if b.currentUser() == nil {
		return ErrLoginRequired
	}

	asmt, ok := b.list.Find(func(a Assignment) bool { return a.ID == id })
	if !ok {
		return ErrNotFound
	}
	if asmt.Completed {
		return nil
	}

	if err := b.assignments.Patch(ctx, id, docstore.Fields{"completed": true}); err != nil {
		b.setNotice(UpdateErrorMessage)
		b.deps.Logger.Error(UpdateErrorMessage, errors.Wrapf(err, "completing assignment %s", id))
		return err
	}

	asmt.Completed = true
	_ = b.list.Reconcile(ctx, listsync.Write[Assignment]{ID: id, Doc: &asmt}, sameID, nil)
	b.setNotice(CompletedNotice)
	return nil
}

func (b *Board) State() BoardState {
	b.mu.Lock()
	usr, notice := b.user, b.notice
	b.mu.Unlock()

	if usr == nil {
		return BoardState{State: listsync.State[Assignment]{Items: []Assignment{}}, LoginRequired: true}
	}
	return BoardState{State: b.list.State(), Notice: notice}
}

func (b *Board) fetcher(studentID string) listsync.Fetcher[Assignment] {
	return func(ctx context.Context) ([]Assignment, error) {
		return b.assignments.Where(ctx, "studentId", studentID)
	}
}

func (b *Board) currentUser() *user.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.user
}

func (b *Board) setNotice(msg string) {
	b.mu.Lock()
	b.notice = msg
	b.mu.Unlock()
}

func sameID(a Assignment, id string) bool { return a.ID == id }

// Create assigns work to a student.
func Create(ctx context.Context, deps core.Deps, na NewAssignment) (Assignment, error) {
	if err := na.Validate(deps.Validate, deps.Translator); err != nil {
		return Assignment{}, err
	}
	asmt := na.assignment()
	id, err := docstore.NewCollection[Assignment](deps.Store, docstore.Assignments).Add(ctx, asmt)
	if err != nil {
		return Assignment{}, err
	}
	asmt.ID = id
	return asmt, nil
}
