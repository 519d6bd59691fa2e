package intel

import "regexp"

// Tactic tags contributed to matchedTactics.
const (
	TagUrgency         = "urgency"
	TagAuthority       = "authority"
	TagThreat          = "threat"
	TagPaymentLure     = "payment_lure"
	TagCredentialPhish = "credential_phish"
	TagSuspicion       = "suspicion"
)

type tacticRule struct {
	tag string
	re  *regexp.Regexp
}

// Word boundaries guard the short English keywords ("now" must not match
// inside "know"). The Hindi and Tamil terms match as plain substrings since
// \b is ASCII-only.
var tacticRules = []tacticRule{
	{TagUrgency, regexp.MustCompile(`(?i)\b(?:immediately|urgent|urgently|now|right away|hurry|asap)\b|तुरंत|உடனே`)},
	{TagAuthority, regexp.MustCompile(`(?i)\b(?:bank|government|police|officer|income tax|rbi|customs)\b`)},
	{TagThreat, regexp.MustCompile(`(?i)\b(?:blocked|suspended|legal action|arrest|arrested|penalty|lawsuit)\b`)},
	{TagPaymentLure, regexp.MustCompile(`(?i)\b(?:send money|transfer|pay|fee|refund|prize|lottery|rs|rupees)\b|₹`)},
	{TagCredentialPhish, regexp.MustCompile(`(?i)\b(?:otp|password|pin|cvv|verify|kyc|aadhaar)\b`)},
	{TagSuspicion, regexp.MustCompile(`(?i)\b(?:are you a bot|are you real|is this a scam|is this automated|you sound like a bot|you are a bot)\b`)},
}

// ScanTactics returns the distinct tactic tags matched in text, in rule order.
func ScanTactics(text string) []string {
	var tags []string
	for _, r := range tacticRules {
		if r.re.MatchString(text) {
			tags = append(tags, r.tag)
		}
	}
	return tags
}
