package notesync

// SaveStatus is the persistence state of the current edit session.
type SaveStatus string

const (
	StatusIdle    SaveStatus = "idle"
	StatusSyncing SaveStatus = "syncing"
	StatusSaved   SaveStatus = "saved"
	StatusError   SaveStatus = "error"
)

// Label returns the text a status indicator shows for s.
func (s SaveStatus) Label() string {
	switch s {
	case StatusSyncing:
		return "Saving..."
	case StatusSaved:
		return "Saved"
	case StatusError:
		return "Error saving"
	default:
		return "Ready"
	}
}
