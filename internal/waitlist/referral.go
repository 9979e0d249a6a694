package waitlist

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// ReferralCodeLength is the length of generated referral codes.
const ReferralCodeLength = 8

// Accepted referral code lengths after trimming.
const (
	MinReferralCodeLength = 4
	MaxReferralCodeLength = 32
)

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

var referralCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateReferralCode returns a random URL-safe code of ReferralCodeLength characters.
func GenerateReferralCode() (string, error) {
	buf := make([]byte, ReferralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	// 64 symbols, so the low six bits index the alphabet without bias.
	for i, b := range buf {
		buf[i] = referralAlphabet[b&63]
	}
	return string(buf), nil
}

// NormalizeReferralCode trims surrounding whitespace.
func NormalizeReferralCode(code string) string {
	return strings.TrimSpace(code)
}

// ValidReferralCode reports whether code, once trimmed, has an accepted
// length and only URL-safe characters.
func ValidReferralCode(code string) bool {
	code = NormalizeReferralCode(code)
	if len(code) < MinReferralCodeLength || len(code) > MaxReferralCodeLength {
		return false
	}
	return referralCodePattern.MatchString(code)
}
