// Package challenge tracks the solved state of the hacking challenges that
// the file server reports on.
package challenge

type Key string

const (
	DirectoryListing       Key = "directoryListingChallenge"
	EasterEggLevelOne      Key = "easterEggLevelOneChallenge"
	ForgottenDevBackup     Key = "forgottenDevBackupChallenge"
	ForgottenBackup        Key = "forgottenBackupChallenge"
	MisplacedSignatureFile Key = "misplacedSignatureFileChallenge"
	NullByte               Key = "nullByteChallenge"
)

var names = map[Key]string{
	DirectoryListing:       "Confidential Document",
	EasterEggLevelOne:      "Easter Egg",
	ForgottenDevBackup:     "Forgotten Developer Backup",
	ForgottenBackup:        "Forgotten Sales Backup",
	MisplacedSignatureFile: "Misplaced Signature File",
	NullByte:               "Poison Null Byte",
}

// All returns the known challenge keys in a stable order.
func All() []Key {
	return []Key{
		DirectoryListing,
		EasterEggLevelOne,
		ForgottenDevBackup,
		ForgottenBackup,
		MisplacedSignatureFile,
		NullByte,
	}
}

// Name is the display name for key, or the key itself when it is unknown.
func (key Key) Name() string {
	if name, ok := names[key]; ok {
		return name
	}
	return string(key)
}

// Registry holds solved flags. A flag only ever goes from unsolved to solved.
type Registry interface {
	// SolveIf marks key solved when predicate reports true. Marking an
	// already solved challenge has no further effect.
	SolveIf(key Key, predicate func() bool)
	IsSolved(key Key) bool
}

type Status struct {
	Key    Key    `json:"key"`
	Name   string `json:"name"`
	Solved bool   `json:"solved"`
}
