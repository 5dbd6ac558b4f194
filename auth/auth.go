// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken    = errors.New("invalid session token")
	ErrExpiredToken    = errors.New("session token expired")
	ErrInvalidPassword = errors.New("invalid password")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 12 * time.Hour

const minPasswordLen = 8

// IssueSession creates a signed token "<userID>.<expiry unix>.<sig>".
// The signature is an HMAC over the first two parts, keyed by salt.
func IssueSession(userID, salt string, now time.Time) string {
	payload := userID + "." + strconv.FormatInt(now.Add(SessionTTL).Unix(), 10)
	return payload + "." + sign(payload, salt)
}

// ParseSession checks the signature and expiry and returns the user id.
func ParseSession(token, salt string, now time.Time) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" {
		return "", ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(sign(payload, salt))) {
		return "", ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if now.Unix() > expiry {
		return "", ErrExpiredToken
	}

	return parts[0], nil
}

func sign(payload, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(payload))
	// URL-safe base64 without padding
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if err := CheckStrength(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password to a bcrypt hash. An empty hash never
// matches.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// CheckStrength enforces the minimum password length, counted in runes.
func CheckStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrWeakPassword
	}
	return nil
}
