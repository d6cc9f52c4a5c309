// Package keyring keeps the PostgreSQL connection string in the OS keyring so
// a password never has to appear in --store or shell history.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitquest/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

const availabilityProbeUser = "availability-probe"

// Credentials addresses one keyring entry.
type Credentials struct {
	Service string
	User    string
}

// Default is the entry holding the database connection string.
func Default() Credentials {
	return Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// Get returns the stored connection string.
func (c Credentials) Get() (string, error) {
	secret, err := gokeyring.Get(c.Service, c.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores the connection string, replacing any previous value.
func (c Credentials) Set(secret string) error {
	if secret == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := gokeyring.Set(c.Service, c.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the entry.
func (c Credentials) Delete() error {
	err := gokeyring.Delete(c.Service, c.User)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Status describes the keyring for the doctor and keyring status commands.
type Status struct {
	Available bool
	Stored    bool
}

// Check probes the keyring. A missing entry still counts as available.
func (c Credentials) Check() Status {
	_, err := gokeyring.Get(c.Service, availabilityProbeUser)
	st := Status{Available: err == nil || errors.Is(err, gokeyring.ErrNotFound)}
	if !st.Available {
		return st
	}
	_, err = c.Get()
	st.Stored = err == nil
	return st
}
