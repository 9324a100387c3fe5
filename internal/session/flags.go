package session

import (
	"context"
	"errors"

	"github.com/stackit/stackit-tui/internal/credential"
	"github.com/stackit/stackit-tui/internal/store"
)

// FlagKey is the name of the persisted session flag.
const FlagKey = "stackit_loggedIn"

// loggedInValue is the only flag value that means "logged in".
const loggedInValue = "1"

// FlagStore persists the session flag. Get reports ok=false when the flag
// is absent.
type FlagStore interface {
	Get(ctx context.Context) (value string, ok bool, err error)
	Set(ctx context.Context, value string) error
	Delete(ctx context.Context) error
}

// StoreFlags keeps the flag in the local settings table.
type StoreFlags struct {
	store store.Store
}

// NewStoreFlags returns a FlagStore backed by s.
func NewStoreFlags(s store.Store) *StoreFlags {
	return &StoreFlags{store: s}
}

func (f *StoreFlags) Get(ctx context.Context) (string, bool, error) {
	return f.store.GetSetting(ctx, FlagKey)
}

func (f *StoreFlags) Set(ctx context.Context, value string) error {
	return f.store.SetSetting(ctx, FlagKey, value)
}

func (f *StoreFlags) Delete(ctx context.Context) error {
	return f.store.DeleteSetting(ctx, FlagKey)
}

// VaultFlags keeps the flag in the system keyring.
type VaultFlags struct {
	vault *credential.Vault
}

// NewVaultFlags returns a FlagStore backed by v.
func NewVaultFlags(v *credential.Vault) *VaultFlags {
	return &VaultFlags{vault: v}
}

func (f *VaultFlags) Get(context.Context) (string, bool, error) {
	v, err := f.vault.Get(FlagKey)
	if errors.Is(err, credential.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (f *VaultFlags) Set(_ context.Context, value string) error {
	return f.vault.Set(FlagKey, value)
}

func (f *VaultFlags) Delete(context.Context) error {
	return f.vault.Delete(FlagKey)
}
