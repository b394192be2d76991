package domain

// Credential is one of three tagged variants presented to the
// authenticator. Credentials are never persisted; they exist only for
// the duration of one Authenticate call.
type Credential interface {
	credential()
}

// PasswordCredential authenticates with a username and password via the
// resource-owner-password grant.
type PasswordCredential struct {
	Username string
	Password string
}

// CodeCredential authenticates with a phone number and a one-time
// verification code previously sent by the provider.
type CodeCredential struct {
	Phone string
	Code  string
}

// GuestCredential provisions a fresh anonymous identity. It carries no
// fields and never touches the network.
type GuestCredential struct{}

func (PasswordCredential) credential() {}
func (CodeCredential) credential()     {}
func (GuestCredential) credential()    {}

// CaptchaChallenge is an opaque (challenge id, proof) pair forwarded to
// the provider when it demands human verification. The gateway keeps no
// state for it.
type CaptchaChallenge struct {
	ChallengeID string
	Proof       string
}

func (c CaptchaChallenge) IsZero() bool {
	return c.ChallengeID == "" && c.Proof == ""
}
