// Package auth persists the MangaDex API token in the system keyring.
package auth

import (
	"errors"

	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/zalando/go-keyring"
)

const user = "mangadex-token"

// SetToken persists the MangaDex bearer token.
func SetToken(token string) error {
	return keyring.Set(constant.App, user, token)
}

// GetToken retrieves the MangaDex bearer token.
func GetToken() (string, error) {
	return keyring.Get(constant.App, user)
}

// Token returns the stored token, or an empty string when none is stored
// or the keyring is unavailable. Requests are then sent anonymously.
func Token() string {
	token, err := GetToken()
	if err != nil {
		return ""
	}
	return token
}

// DeleteToken removes the MangaDex bearer token. Deleting a missing token is not an error.
func DeleteToken() error {
	if err := keyring.Delete(constant.App, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
