package domain

import "errors"

var ErrLobbyNotFound = errors.New("lobby not found")
var ErrLobbyInProgress = errors.New("lobby already in progress")
var ErrInvalidState = errors.New("operation not allowed in current state")
var ErrNotHost = errors.New("caller is not the host")
var ErrNotChooser = errors.New("caller is not the word chooser")
var ErrNotMember = errors.New("caller is not a player in this lobby")
var ErrInvalidName = errors.New("invalid player name")
var ErrInvalidWord = errors.New("word must not be empty")
var ErrInvalidVote = errors.New("invalid vote target")
var ErrCodeSpaceExhausted = errors.New("could not allocate an unused lobby code")
var ErrConflict = errors.New("concurrent modification, retry")
var ErrIdentityNotFound = errors.New("identity not found")
