package credentials

import (
	"context"
	"fmt"

	iamcredentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/compute/metadata"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"lcutils/internal/signer"
)

// BlobSigner is the subset of the IAM Credentials client used for signing.
type BlobSigner interface {
	SignBlob(ctx context.Context, req *credentialspb.SignBlobRequest, opts ...gax.CallOption) (*credentialspb.SignBlobResponse, error)
}

// IAMProvider signs through the IAM Credentials signBlob API, so no private
// key ever leaves Google. The caller needs roles/iam.serviceAccountTokenCreator
// on the target service account.
type IAMProvider struct {
	client BlobSigner
	email  string
	closer func() error
}

// NewIAMProvider connects to the IAM Credentials API. When email is empty and
// the process runs on GCE, the default service account of the instance is used.
func NewIAMProvider(ctx context.Context, email string, opts ...option.ClientOption) (*IAMProvider, error) {
	client, err := iamcredentials.NewIamCredentialsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating iam credentials client: %w", err)
	}

	if email == "" && metadata.OnGCE() {
		email, err = metadata.EmailWithContext(ctx, "default")
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("resolving default service account: %w", err)
		}
	}

	return &IAMProvider{client: client, email: email, closer: client.Close}, nil
}

// NewIAMProviderWithClient builds a provider around an existing signer.
func NewIAMProviderWithClient(client BlobSigner, email string) *IAMProvider {
	return &IAMProvider{client: client, email: email}
}

// Identity returns an identity bound to ctx, or nil when no service account is known.
func (p *IAMProvider) Identity(ctx context.Context) (signer.Identity, error) {
	if p.email == "" {
		return nil, nil
	}
	return &iamIdentity{ctx: ctx, client: p.client, email: p.email}, nil
}

// Close releases the underlying client.
func (p *IAMProvider) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// iamIdentity carries the context of the call that resolved it; signer.Identity
// has no context parameter.
type iamIdentity struct {
	ctx    context.Context
	client BlobSigner
	email  string
}

func (i *iamIdentity) ServiceAccountEmail() string {
	return i.email
}

func (i *iamIdentity) SignBytes(p []byte) ([]byte, error) {
	resp, err := i.client.SignBlob(i.ctx, &credentialspb.SignBlobRequest{
		Name:    "projects/-/serviceAccounts/" + i.email,
		Payload: p,
	})
	if err != nil {
		return nil, fmt.Errorf("iam signBlob: %w", err)
	}
	return resp.GetSignedBlob(), nil
}
