package classifier

const classifySystemPrompt = `You are a fraud analyst reviewing messages received by a honeypot that poses as a potential scam victim.

Decide whether the sender is running a scam. Strong signals:
- Impersonating banks, government agencies, police, or telecom providers
- Manufactured urgency or threats (account blocked, arrest warrant, penalty)
- Requests for OTPs, PINs, passwords, card numbers, or KYC details
- Payment demands, fees to release prizes, refund bait, or UPI transfer requests
- Shortened or look-alike links the victim is told to open

A legitimate message can mention a bank or a payment without any of these pressure patterns. Judge the pattern, not the vocabulary.

Report a probability, not a binary guess: 0.9 or higher for blatant scams, near 0.0 for clearly benign messages, intermediate values when genuinely uncertain.`

const classifyUserPrompt = `Conversation so far (most recent last):
---
%s---

Newest scammer message:
%s

Keyword signals already matched: %s

Respond with valid JSON matching this schema:
{
  "is_scam": true|false,
  "confidence": 0.0-1.0,
  "rationale": "string"
}

confidence is the probability that the sender is running a scam.
Return ONLY the JSON object, no markdown fences or other text.`
