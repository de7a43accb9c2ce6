package policies

import (
	"time"

	"repolint/internal/ports"
	"repolint/internal/types"
)

const expiryDateLayout = "2006-01-02"

func keyRules(env Env) []ports.Rule {
	return []ports.Rule{
		keyRule("key_signing_expiry", "package signing keys expired or about to expire", func(key *types.SigningKey) (string, bool) {
			if len(key.Signed) == 0 {
				return "", false
			}
			return expiryDetail(key, env.now(), env.horizon())
		}),
		keyRule("key_master_expiry", "master keys expired or about to expire", func(key *types.SigningKey) (string, bool) {
			if key.IsSubkey() {
				return "", false
			}
			return expiryDetail(key, env.now(), env.horizon())
		}),
	}
}

// expiryDetail reports a key that has expired, or expires before now
// plus horizon. Keys without an expiry never fire.
func expiryDetail(key *types.SigningKey, now time.Time, horizon time.Duration) (string, bool) {
	if key.Expires.IsZero() {
		return "", false
	}
	var detail string
	switch {
	case !key.Expires.After(now):
		detail = "expired " + key.Expires.UTC().Format(expiryDateLayout)
	case key.Expires.Before(now.Add(horizon)):
		detail = "expires " + key.Expires.UTC().Format(expiryDateLayout)
	default:
		return "", false
	}
	if key.IsSubkey() {
		detail += ", subkey of " + key.MasterKeyID
	}
	return detail, true
}
