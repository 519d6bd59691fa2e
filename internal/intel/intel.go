package intel

import "sort"

// Intelligence is the accumulated structured record for one session. Every
// field is a set: entries are deduplicated and kept sorted, so re-scanning
// the same text never adds anything.
type Intelligence struct {
	BankAccounts []string `json:"bankAccounts"`
	UPIIDs       []string `json:"upiIds"`
	PhoneNumbers []string `json:"phoneNumbers"`
	URLs         []string `json:"urls"`
	Tactics      []string `json:"matchedTactics"`
}

// Clone returns a deep copy safe to mutate without touching the original.
func (i Intelligence) Clone() Intelligence {
	return Intelligence{
		BankAccounts: append([]string(nil), i.BankAccounts...),
		UPIIDs:       append([]string(nil), i.UPIIDs...),
		PhoneNumbers: append([]string(nil), i.PhoneNumbers...),
		URLs:         append([]string(nil), i.URLs...),
		Tactics:      append([]string(nil), i.Tactics...),
	}
}

// HasPaymentIdentifier reports whether any payment destination was captured.
func (i Intelligence) HasPaymentIdentifier() bool {
	return len(i.UPIIDs) > 0 || len(i.BankAccounts) > 0
}

// HasContactVector reports whether a phone number or link was captured.
func (i Intelligence) HasContactVector() bool {
	return len(i.PhoneNumbers) > 0 || len(i.URLs) > 0
}

// Count returns the number of captured identifiers, excluding tactic tags.
func (i Intelligence) Count() int {
	return len(i.BankAccounts) + len(i.UPIIDs) + len(i.PhoneNumbers) + len(i.URLs)
}

// insert adds v to a sorted set, keeping order and rejecting duplicates.
func insert(set []string, v string) []string {
	n := sort.SearchStrings(set, v)
	if n < len(set) && set[n] == v {
		return set
	}
	set = append(set, "")
	copy(set[n+1:], set[n:])
	set[n] = v
	return set
}
