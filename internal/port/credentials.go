package port

import (
	"context"

	"lcutils/internal/signer"
)

// CredentialProvider supplies the identity used to sign URLs. A provider may
// return a nil identity when none is configured.
type CredentialProvider interface {
	Identity(ctx context.Context) (signer.Identity, error)
}
