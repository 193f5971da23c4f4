package session

import (
	"fmt"

	"auth-gate/internal/utils"
)

// idBytes of entropy per session id.
const idBytes = 32

// newID returns an unguessable, URL-safe session id.
func newID() (string, error) {
	id, err := utils.RandomString(idBytes)
	if err != nil {
		return "", fmt.Errorf("session: id: %w", err)
	}
	return id, nil
}
