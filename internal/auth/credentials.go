// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// Credentials is the single admin account.
type Credentials struct {
	User         string
	Password     string // used when PasswordHash is empty
	PasswordHash string // argon2id PHC string
}

// Check reports whether user and password match. Both comparisons run in
// constant time so a wrong user name is not distinguishable by timing.
func (c Credentials) Check(user, password string) (bool, error) {
	userOK := equal(user, c.User)

	if c.PasswordHash != "" {
		ok, err := CheckPassword(password, c.PasswordHash)
		if err != nil {
			return false, fmt.Errorf("checking admin password: %w", err)
		}
		return userOK && ok, nil
	}

	if c.Password == "" {
		return false, nil
	}
	return userOK && equal(password, c.Password), nil
}

// equal compares digests so differing lengths do not short-circuit.
func equal(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
