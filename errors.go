package atomix

import "github.com/agilira/go-errors"

// ErrCodeKeyNotFound identifies the Dict.At failure mode.
const ErrCodeKeyNotFound = "ATOMIX_KEY_NOT_FOUND"

// ErrKeyNotFound is returned by Dict.At for an absent key. Absence is
// a programming error on the At path; every other lookup reports it
// through an ordinary ok result instead.
var ErrKeyNotFound = errors.New(ErrCodeKeyNotFound, "key not in dictionary")
