package sessions

// Repo persists the session across process restarts.
// Implementations must replace the whole session on Save; a reader must never
// observe a mix of old and new values.
type Repo interface {
	// Load returns the persisted session. Nothing persisted is not an error and
	// yields an empty Session.
	Load() (Session, error)

	// Save overwrites any previously persisted session
	Save(session Session) error

	// Clear removes the persisted session. Clearing an empty repo is not an error.
	Clear() error
}
