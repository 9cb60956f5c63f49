package cvault

import "fmt"

// CleartextEntry is the decrypted shape of a vault entry. Service,
// username and password are required; notes may be nil. Field buffers
// are owned by the caller and should be zeroized when no longer needed.
type CleartextEntry struct {
	UUID      string
	Service   []byte
	Username  []byte
	Password  []byte
	Notes     []byte
	CreatedAt int64
	UpdatedAt int64
}

// VaultEntry is the single internal representation of a stored entry:
// uuid, four sealed field blobs with explicit lengths, and two unix
// epoch timestamps. NotesBlob may be nil.
type VaultEntry struct {
	UUID         string
	ServiceBlob  []byte
	UsernameBlob []byte
	PasswordBlob []byte
	NotesBlob    []byte
	CreatedAt    int64
	UpdatedAt    int64
}

// Zeroize wipes all field buffers of the cleartext entry
func (e *CleartextEntry) Zeroize() {
	if e.Service != nil {
		Zeroize(e.Service)
	}
	if e.Username != nil {
		Zeroize(e.Username)
	}
	if e.Password != nil {
		Zeroize(e.Password)
	}
	if e.Notes != nil {
		Zeroize(e.Notes)
	}
}

// SealEntry encrypts each field of the cleartext entry under the
// master key. UUID and timestamps carry over verbatim; a nil notes
// field stays nil.
func SealEntry(masterKey []byte, clear *CleartextEntry) (*VaultEntry, error) {
	if clear == nil {
		return nil, fmt.Errorf("%w: entry", ErrNilInput)
	}

	if clear.Service == nil || clear.Username == nil || clear.Password == nil {
		return nil, fmt.Errorf("%w: entry field", ErrNilInput)
	}

	serviceBlob, err := SealBlob(masterKey, clear.Service)
	if err != nil {
		return nil, fmt.Errorf("seal service: %w", err)
	}

	usernameBlob, err := SealBlob(masterKey, clear.Username)
	if err != nil {
		return nil, fmt.Errorf("seal username: %w", err)
	}

	passwordBlob, err := SealBlob(masterKey, clear.Password)
	if err != nil {
		return nil, fmt.Errorf("seal password: %w", err)
	}

	var notesBlob []byte
	if clear.Notes != nil {
		notesBlob, err = SealBlob(masterKey, clear.Notes)
		if err != nil {
			return nil, fmt.Errorf("seal notes: %w", err)
		}
	}

	return &VaultEntry{
		UUID:         clear.UUID,
		ServiceBlob:  serviceBlob,
		UsernameBlob: usernameBlob,
		PasswordBlob: passwordBlob,
		NotesBlob:    notesBlob,
		CreatedAt:    clear.CreatedAt,
		UpdatedAt:    clear.UpdatedAt,
	}, nil
}

// OpenEntry decrypts every field blob of the entry. If any field fails
// authentication the whole operation fails and already-decrypted
// fields are zeroized before return.
func OpenEntry(masterKey []byte, entry *VaultEntry) (*CleartextEntry, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: entry", ErrNilInput)
	}

	clear := &CleartextEntry{
		UUID:      entry.UUID,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}

	var err error

	defer func() {
		if err != nil {
			clear.Zeroize()
		}
	}()

	clear.Service, err = OpenBlob(masterKey, entry.ServiceBlob)
	if err != nil {
		return nil, fmt.Errorf("open service: %w", err)
	}

	clear.Username, err = OpenBlob(masterKey, entry.UsernameBlob)
	if err != nil {
		return nil, fmt.Errorf("open username: %w", err)
	}

	clear.Password, err = OpenBlob(masterKey, entry.PasswordBlob)
	if err != nil {
		return nil, fmt.Errorf("open password: %w", err)
	}

	if entry.NotesBlob != nil {
		clear.Notes, err = OpenBlob(masterKey, entry.NotesBlob)
		if err != nil {
			return nil, fmt.Errorf("open notes: %w", err)
		}
	}

	return clear, nil
}
