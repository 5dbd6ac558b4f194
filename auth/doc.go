// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens and password hashing.

# Session Tokens

Session tokens use HMAC-SHA256 so they can be verified without a session
table:

	token := auth.IssueSession(userID, salt, time.Now())
	userID, err := auth.ParseSession(token, salt, time.Now())

A token is "<userID>.<expiry unix>.<signature>", the signature URL-safe
base64 without padding. Tokens expire after SessionTTL. ParseSession returns
ErrInvalidToken for anything malformed or tampered with and ErrExpiredToken
once the expiry has passed.

# Passwords

Admins and the super admin log in with a password; students only with their
code. Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt)

HashPassword rejects passwords shorter than eight characters with
ErrWeakPassword.
*/
package auth
