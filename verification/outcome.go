package verification

import (
	"encoding/json"
)

// OutcomeStatus is the discriminant of a SignatureOutcome.
type OutcomeStatus string

const (
	StatusVerified   OutcomeStatus = "Verified"
	StatusFailed     OutcomeStatus = "Failed"
	StatusNotPresent OutcomeStatus = "NotPresent"
)

// SignatureOutcome is the result of one verification attempt. KeyID is set for
// Verified, Reason for Failed and NotPresent. Build it with Verified, Failed or NotPresent.
type SignatureOutcome struct {
	Status OutcomeStatus
	KeyID  string
	Reason string
}

// Verified reports a valid signature made with kid.
func Verified(kid string) SignatureOutcome {
	return SignatureOutcome{Status: StatusVerified, KeyID: kid}
}

// Failed reports a signature that could not be verified.
func Failed(reason string) SignatureOutcome {
	return SignatureOutcome{Status: StatusFailed, Reason: reason}
}

// NotPresent reports that verification was skipped.
func NotPresent(reason string) SignatureOutcome {
	return SignatureOutcome{Status: StatusNotPresent, Reason: reason}
}

// IsVerified reports whether the outcome is Verified.
func (o SignatureOutcome) IsVerified() bool {
	return o.Status == StatusVerified
}

type outcomeDetails struct {
	KeyID  string `json:"kid,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type outcomeJSON struct {
	Status  OutcomeStatus  `json:"status"`
	Details outcomeDetails `json:"details"`
}

// MarshalJSON encodes the outcome as {"status": ..., "details": {...}}.
func (o SignatureOutcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Status: o.Status}
	if o.Status == StatusVerified {
		out.Details.KeyID = o.KeyID
	} else {
		out.Details.Reason = o.Reason
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (o *SignatureOutcome) UnmarshalJSON(data []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = SignatureOutcome{Status: in.Status, KeyID: in.Details.KeyID, Reason: in.Details.Reason}
	return nil
}
