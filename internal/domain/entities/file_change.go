package entities

// FileChangeEvent is one file-level entry of a version-control diff. The set
// of implementations is closed: Added, Deleted, Modified and Renamed.
type FileChangeEvent interface {
	// Paths returns every path the event touches, source first.
	Paths() []string
	isFileChangeEvent()
}

// Added records a file that exists only after the change.
type Added struct {
	Path string
}

// Deleted records a file that exists only before the change.
type Deleted struct {
	Path string
}

// Modified records a content-only change to an existing file.
type Modified struct {
	Path string
}

// Renamed records a file moved from one path to another.
type Renamed struct {
	From string
	To   string
}

func NewAdded(path string) FileChangeEvent { return Added{Path: path} }

func NewDeleted(path string) FileChangeEvent { return Deleted{Path: path} }

func NewModified(path string) FileChangeEvent { return Modified{Path: path} }

func NewRenamed(from, to string) FileChangeEvent { return Renamed{From: from, To: to} }

func (e Added) Paths() []string    { return []string{e.Path} }
func (e Deleted) Paths() []string  { return []string{e.Path} }
func (e Modified) Paths() []string { return []string{e.Path} }
func (e Renamed) Paths() []string  { return []string{e.From, e.To} }

func (Added) isFileChangeEvent()    {}
func (Deleted) isFileChangeEvent()  {}
func (Modified) isFileChangeEvent() {}
func (Renamed) isFileChangeEvent()  {}

// TouchesPath reports whether any event refers to the given path.
func TouchesPath(events []FileChangeEvent, path string) bool {
	for _, event := range events {
		for _, p := range event.Paths() {
			if p == path {
				return true
			}
		}
	}
	return false
}
