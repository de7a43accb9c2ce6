package adapters

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"repolint/internal/ports"
	"repolint/internal/types"
)

// KeyringAdapter lists the primary keys and subkeys of an OpenPGP
// keyring file, armored or binary.
type KeyringAdapter struct{}

func NewKeyringAdapter() KeyringAdapter {
	return KeyringAdapter{}
}

func (a KeyringAdapter) LoadKeys(ctx context.Context, path string) ([]*types.SigningKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read keyring").
			WithCause(err)
	}
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to parse keyring").
				WithCause(err)
		}
	}
	keys := keysFromEntities(entities)
	log.Ctx(ctx).Debug().Str("path", path).Int("keys", len(keys)).Msg("keyring loaded")
	return keys, nil
}

func keysFromEntities(entities openpgp.EntityList) []*types.SigningKey {
	var keys []*types.SigningKey
	for _, entity := range entities {
		if entity.PrimaryKey == nil {
			continue
		}
		uid := ""
		var selfSig *packet.Signature
		if identity := entity.PrimaryIdentity(); identity != nil {
			uid = identity.Name
			selfSig = identity.SelfSignature
		}
		master := &types.SigningKey{
			KeyID:       entity.PrimaryKey.KeyIdString(),
			Fingerprint: fingerprintString(entity.PrimaryKey.Fingerprint),
			UID:         uid,
			Created:     entity.PrimaryKey.CreationTime.UTC(),
			Expires:     expiryOf(entity.PrimaryKey.CreationTime, selfSig),
		}
		keys = append(keys, master)
		for _, subkey := range entity.Subkeys {
			if subkey.PublicKey == nil {
				continue
			}
			keys = append(keys, &types.SigningKey{
				KeyID:       subkey.PublicKey.KeyIdString(),
				Fingerprint: fingerprintString(subkey.PublicKey.Fingerprint),
				UID:         uid,
				MasterKeyID: master.KeyID,
				Created:     subkey.PublicKey.CreationTime.UTC(),
				Expires:     expiryOf(subkey.PublicKey.CreationTime, subkey.Sig),
			})
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].KeyID < keys[j].KeyID
	})
	return keys
}

// expiryOf reads the key lifetime from a binding signature. No lifetime
// means the key never expires.
func expiryOf(created time.Time, sig *packet.Signature) time.Time {
	if sig == nil || sig.KeyLifetimeSecs == nil || *sig.KeyLifetimeSecs == 0 {
		return time.Time{}
	}
	return created.Add(time.Duration(*sig.KeyLifetimeSecs) * time.Second).UTC()
}

func fingerprintString(fp []byte) string {
	return strings.ToUpper(hex.EncodeToString(fp))
}

var _ ports.KeyringPort = KeyringAdapter{}
