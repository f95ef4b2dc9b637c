package agents

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrAmbiguousIdentity   = errors.New("ambiguous identity")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrDuplicateAgent      = errors.New("duplicate agent code")
)

// AmbiguousIdentityError reports two reviewed sources assigning one key to
// different agents. The source data has to be corrected before re-running.
type AmbiguousIdentityError struct {
	Namespace         Namespace
	Key               string
	Existing          string
	ExistingSource    string
	Conflicting       string
	ConflictingSource string
}

func (e *AmbiguousIdentityError) Error() string {
	return fmt.Sprintf("%s %s %q: %s says %s, %s says %s",
		ErrAmbiguousIdentity, e.Namespace, e.Key,
		e.ExistingSource, e.Existing, e.ConflictingSource, e.Conflicting)
}

func (e *AmbiguousIdentityError) Unwrap() error { return ErrAmbiguousIdentity }

// UnresolvedReference is a legacy key with no mapping, found while writing
// Table.Column for the record Row. It is recorded and logged, not fatal.
type UnresolvedReference struct {
	Table     string
	Column    string
	Row       string
	Namespace Namespace
	Key       string
}

func (u UnresolvedReference) Error() string {
	return fmt.Sprintf("%s: %s.%s row %s: no agent for %s key %q",
		ErrUnresolvedReference, u.Table, u.Column, u.Row, u.Namespace, u.Key)
}

func (u UnresolvedReference) Unwrap() error { return ErrUnresolvedReference }
