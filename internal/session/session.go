// Package session holds the in-progress edit state of the add/edit form: one
// record at a time, create or edit mode, validated on submit. The session is
// the only writer path into the record store besides row deletion.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"gitlab.com/william.mucha/users-service/internal/catalog"
	"gitlab.com/william.mucha/users-service/internal/codec"
	"gitlab.com/william.mucha/users-service/internal/model"
	"gitlab.com/william.mucha/users-service/internal/store"
)

// Mode is the session state: closed, or open for create or edit.
type Mode string

const (
	Closed     Mode = "closed"
	OpenCreate Mode = "create"
	OpenEdit   Mode = "edit"
)

// ErrClosed signals a submit or field change while no form is open.
var ErrClosed = errors.New("no form open")

// ErrBusy signals a submit while a previous store call is still outstanding.
var ErrBusy = errors.New("submit already in progress")

// Session is the form state machine. All methods are safe for concurrent use;
// the draft is owned exclusively by the session and handed out as copies.
type Session struct {
	mu      sync.Mutex
	mode    Mode
	editId  string
	draft   model.FormDraft
	busy    bool
	gateway store.Gateway
	codec   *codec.Codec
	log     *zap.Logger
	refresh chan struct{}
}

// New returns a closed session writing through the given gateway.
func New(gateway store.Gateway, c *codec.Codec, log *zap.Logger) *Session {
	return &Session{
		mode:    Closed,
		gateway: gateway,
		codec:   c,
		log:     log,
		refresh: make(chan struct{}, 1),
	}
}

// Refresh signals once after every successful submit. Consumers re-pull the
// record list; the channel is buffered so a slow consumer never blocks the
// session.
func (s *Session) Refresh() <-chan struct{} {
	return s.refresh
}

// Snapshot returns the current mode and a copy of the draft.
func (s *Session) Snapshot() (Mode, model.FormDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.draft
}

// OpenCreate opens the form with an all-empty draft. Opening over an already
// open form discards the previous draft, matching a dialog that can only be
// opened from the closed page.
func (s *Session) OpenCreate() model.FormDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = OpenCreate
	s.editId = ""
	s.draft = s.codec.ToDraft(nil)
	return s.draft
}

// OpenEdit re-fetches the record from the store and opens the form with a
// draft pre-populated from it. On failure the session stays closed and the
// store error surfaces to the caller.
func (s *Session) OpenEdit(ctx context.Context, id string) (model.FormDraft, error) {
	rec, err := s.gateway.Find(ctx, id)
	if err != nil {
		s.log.Warn("open edit failed", zap.String("id", id), zap.Error(err))
		return model.FormDraft{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = OpenEdit
	s.editId = id
	s.draft = s.codec.ToDraft(&rec)
	return s.draft, nil
}

// SetCountry records a country choice on the open draft, clears a previously
// selected city that is not valid for the new country, and returns the city
// options to offer.
func (s *Session) SetCountry(country model.Option) ([]model.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == Closed {
		return nil, ErrClosed
	}
	s.draft.Country = country
	if !s.draft.City.IsZero() && !catalog.Contains(country.Value, s.draft.City.Value) {
		s.draft.City = model.Option{}
	}
	return catalog.CityOptions(country.Value), nil
}

// Submit validates the draft and writes it through the gateway: Create in
// add mode, full-replace Update in edit mode. On success the form closes, the
// draft is discarded and a refresh is signaled. On a validation error the
// form stays open with the submitted draft and the store is never called.
func (s *Session) Submit(ctx context.Context, draft model.FormDraft) error {
	s.mu.Lock()
	if s.mode == Closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.draft = draft
	rec, err := s.codec.ToRecord(draft)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	mode, editId := s.mode, s.editId
	s.busy = true
	s.mu.Unlock()

	err = s.write(ctx, mode, editId, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		// Store failures close the form; the caller shows a failure notice
		// over the unchanged list. Only validation errors keep it open, and
		// those never reach this point.
		s.log.Warn("submit failed", zap.String("mode", string(mode)), zap.Error(err))
		s.close()
		return err
	}
	s.close()
	select {
	case s.refresh <- struct{}{}:
	default:
	}
	return nil
}

func (s *Session) write(ctx context.Context, mode Mode, editId string, rec model.PersonRecord) error {
	if mode == OpenEdit {
		return s.gateway.Update(ctx, editId, rec)
	}
	_, err := s.gateway.Create(ctx, rec)
	return err
}

// Cancel discards the draft and closes the form without touching the store.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close()
}

func (s *Session) close() {
	s.mode = Closed
	s.editId = ""
	s.draft = model.FormDraft{}
}
