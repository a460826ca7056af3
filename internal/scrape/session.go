package scrape

import (
	"bytes"
	"fmt"
	"os"
)

// SaveSession writes the opaque login state to the session file. Readable
// only by the owner since it carries live browser cookies.
func SaveSession(path string, session Session) error {
	if err := os.WriteFile(path, session, 0o600); err != nil {
		return fmt.Errorf("could not write session file: %w", err)
	}
	return nil
}

// LoadSession reads the login state saved by a previous login.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read session file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("session file %s is empty, run login first", path)
	}
	return Session(data), nil
}
