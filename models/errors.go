package models

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNotMember         = errors.New("not a member of this household")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrAlreadyMember     = errors.New("already a member of this household")
	ErrNoHousehold       = errors.New("no active household")
)
