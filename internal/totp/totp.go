package totp

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	defaultPeriod     = 30
	defaultSkew       = 1
	defaultSecretSize = 20
)

// Engine generates enrollment secrets and verifies submitted one-time
// codes. It holds no per-user state; the caller persists the secret.
type Engine struct {
	issuer string
	period uint
	skew   uint
	now    func() time.Time
}

func NewEngine(issuer string) *Engine {
	return &Engine{
		issuer: issuer,
		period: defaultPeriod,
		skew:   defaultSkew,
		now:    time.Now,
	}
}

// Enroll generates a random base32 secret and the otpauth:// provisioning
// URI for authenticator apps. The secret is returned exactly once here and
// never again.
func (e *Engine) Enroll(username string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: username,
		Period:      e.period,
		SecretSize:  defaultSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// Verify reports whether code matches secret for the current time step or
// an adjacent one (skew=1 tolerates client clock drift of ±30s). Malformed
// secrets and codes yield false, never an error.
func (e *Engine) Verify(secret, code string) bool {
	return e.VerifyAt(secret, code, e.now())
}

func (e *Engine) VerifyAt(secret, code string, at time.Time) bool {
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, at.UTC(), totp.ValidateOpts{
		Period:    e.period,
		Skew:      e.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}

	return valid
}

// QRCodeDataURI renders a provisioning URI as a PNG data URI suitable for
// an <img> tag, matching the enrollment payload returned to clients.
func QRCodeDataURI(provisioningURI string) (string, error) {
	key, err := otp.NewKeyFromURL(provisioningURI)
	if err != nil {
		return "", err
	}

	img, err := key.Image(256, 256)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
