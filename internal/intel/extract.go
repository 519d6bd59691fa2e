package intel

import (
	"regexp"
	"strings"
)

// Phone normalization assumes Indian national numbers when no calling code
// is present.
const defaultCountryCode = "+91"

// Named pattern rules. Each is independent; Extract runs them all and merges
// hits into a copy of the existing record.
var (
	rePhoneIntl   = regexp.MustCompile(`\+\d{1,3}[-\s]?\d{10}\b`)
	rePhoneBare   = regexp.MustCompile(`\b[6-9]\d{9}\b`)
	reAcctGrouped = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4,6}\b`)
	reAcctBare    = regexp.MustCompile(`\b\d{8,18}\b`)
	reIFSC        = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	reUPIHandle   = regexp.MustCompile(`(?i)\b[a-z0-9][a-z0-9._-]+@[a-z]+\b`)
	reURL         = regexp.MustCompile(`https?://[^\s<>"']+`)
	reShortener   = regexp.MustCompile(`(?i)\b(?:bit\.ly|tinyurl\.com|goo\.gl|t\.co)/[a-z0-9_-]+`)
)

var upiProviders = map[string]bool{
	"upi":        true,
	"paytm":      true,
	"phonepe":    true,
	"googlepay":  true,
	"gpay":       true,
	"ybl":        true,
	"axl":        true,
	"ibl":        true,
	"okaxis":     true,
	"okhdfcbank": true,
	"oksbi":      true,
	"okicici":    true,
}

// Extract scans text and returns the union of existing with every new match.
// It never removes prior entries, has no side effects, and is deterministic:
// extracting the same text twice yields the same record.
func Extract(text string, existing Intelligence) Intelligence {
	out := existing.Clone()

	phones, claimed := findPhones(text)
	for _, p := range phones {
		out.PhoneNumbers = insert(out.PhoneNumbers, p)
	}
	for _, a := range findAccounts(text, claimed) {
		out.BankAccounts = insert(out.BankAccounts, a)
	}
	for _, h := range findUPIHandles(text) {
		out.UPIIDs = insert(out.UPIIDs, h)
	}
	for _, u := range findURLs(text) {
		out.URLs = insert(out.URLs, u)
	}
	for _, tag := range ScanTactics(text) {
		out.Tactics = insert(out.Tactics, tag)
	}
	return out
}

// findPhones returns normalized numbers plus the digit runs they claim, so
// the account rule can skip them.
func findPhones(text string) ([]string, map[string]bool) {
	claimed := make(map[string]bool)
	var phones []string

	for _, m := range rePhoneIntl.FindAllString(text, -1) {
		digits := digitsOf(m)
		claimed[digits] = true
		if len(digits) > 10 {
			claimed[digits[len(digits)-10:]] = true
		}
		phones = append(phones, "+"+digits)
	}
	for _, m := range rePhoneBare.FindAllString(text, -1) {
		if claimed[m] {
			continue
		}
		claimed[m] = true
		phones = append(phones, defaultCountryCode+m)
	}
	return phones, claimed
}

func findAccounts(text string, claimed map[string]bool) []string {
	seen := make(map[string]bool)
	var accounts []string

	add := func(digits string) {
		if len(digits) < 8 || len(digits) > 18 {
			return
		}
		if claimed[digits] || seen[digits] {
			return
		}
		// Bare 10-digit runs leading 6-9 are Indian mobile numbers; the
		// phone rules own those.
		if len(digits) == 10 && digits[0] >= '6' {
			return
		}
		seen[digits] = true
		accounts = append(accounts, maskAccount(digits))
	}

	for _, m := range reAcctGrouped.FindAllString(text, -1) {
		add(digitsOf(m))
	}
	for _, m := range reAcctBare.FindAllString(text, -1) {
		add(m)
	}
	// IFSC routing codes ride in the same set, unmasked.
	for _, m := range reIFSC.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			accounts = append(accounts, m)
		}
	}
	return accounts
}

func findUPIHandles(text string) []string {
	var handles []string
	for _, m := range reUPIHandle.FindAllString(text, -1) {
		h := strings.ToLower(m)
		at := strings.LastIndex(h, "@")
		if upiProviders[h[at+1:]] {
			handles = append(handles, h)
		}
	}
	return handles
}

func findURLs(text string) []string {
	seen := make(map[string]bool)
	var urls []string

	add := func(u string) {
		u = strings.TrimRight(u, `.,;:!?)"'`)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for _, m := range reURL.FindAllString(text, -1) {
		add(m)
	}
	// Bare shortener links get a scheme; scheme-qualified ones were already
	// caught by the URL rule.
	for _, loc := range reShortener.FindAllStringIndex(text, -1) {
		if loc[0] >= 3 && text[loc[0]-3:loc[0]] == "://" {
			continue
		}
		add("http://" + text[loc[0]:loc[1]])
	}
	return urls
}

// maskAccount keeps the first 2 and last 4 digits visible. Raw account
// numbers are never stored, even transiently.
func maskAccount(digits string) string {
	if len(digits) <= 6 {
		return digits
	}
	return digits[:2] + strings.Repeat("X", len(digits)-6) + digits[len(digits)-4:]
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
