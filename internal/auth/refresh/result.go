package refresh

// Status is the outcome of verifying a presented refresh token. Statuses are
// values, not errors: only infrastructure failures surface as errors.
type Status int

const (
	// StatusInvalid: signature or format check failed. No state was touched.
	StatusInvalid Status = iota
	// StatusOK: the token is authentic, unexpired and is the subject's current one.
	StatusOK
	// StatusExpired: the token is authentic but past its lifetime. The
	// subject's record has been removed.
	StatusExpired
	// StatusLoggedOut: the token is authentic but the subject has no record.
	StatusLoggedOut
	// StatusTamperSuspected: the token is authentic but superseded. The old
	// record was discarded and a fresh token issued in Result.NewToken.
	StatusTamperSuspected
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusExpired:
		return "expired"
	case StatusLoggedOut:
		return "logged_out"
	case StatusTamperSuspected:
		return "tamper_suspected"
	default:
		return "invalid"
	}
}

// Result is the outcome of Manager.Verify.
type Result struct {
	Status    Status
	SubjectID string
	// NewToken is set only for StatusTamperSuspected.
	NewToken string
}
