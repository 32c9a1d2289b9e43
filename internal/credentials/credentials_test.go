package credentials_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcutils/internal/credentials"
	"lcutils/internal/domain"
	"lcutils/internal/signer"
)

const testEmail = "svc@project.iam.gserviceaccount.com"

func writeKeyFile(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "project",
		"private_key_id": "abc123",
		"private_key":    string(pemBytes),
		"client_email":   testEmail,
		"client_id":      "1234567890",
		"token_uri":      "https://oauth2.googleapis.com/token",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestKeyFileProvider_SignsVerifiably(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	provider, err := credentials.NewKeyFileProvider(writeKeyFile(t, key))
	require.NoError(t, err)

	id, err := provider.Identity(context.Background())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, testEmail, id.ServiceAccountEmail())

	msg := []byte("GOOG4-RSA-SHA256\n20220610T000000Z")
	sig, err := id.SignBytes(msg)
	require.NoError(t, err)

	digest := sha256.Sum256(msg)
	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig))
}

func TestKeyFileProvider_SignedURLVerifies(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	provider, err := credentials.NewKeyFileProvider(writeKeyFile(t, key))
	require.NoError(t, err)
	id, err := provider.Identity(context.Background())
	require.NoError(t, err)

	now := time.Date(2022, 6, 10, 0, 0, 0, 0, time.UTC)
	signed, err := signer.Sign(id, signer.Request{
		Bucket: "fuelcast-data",
		Object: "projections/2022-06-10/annual_herb_ppa_2022-06-10.tif",
	}, now)
	require.NoError(t, err)

	// Recompute the string to sign the way a verifier would.
	u, err := url.Parse(signed)
	require.NoError(t, err)
	marker := "&" + signer.GoogSignatureKey + "="
	idx := strings.Index(u.RawQuery, marker)
	require.Positive(t, idx)
	canonicalQuery := u.RawQuery[:idx]
	sig, err := hex.DecodeString(u.RawQuery[idx+len(marker):])
	require.NoError(t, err)

	canonicalRequest := signer.BuildCanonicalString(
		"GET",
		u.EscapedPath(),
		canonicalQuery,
		"host:"+u.Host+"\n",
		"host",
		signer.UnsignedPayload,
	)
	stringToSign := signer.BuildStringToSign(
		signer.SigningAlgorithm,
		"20220610T000000Z",
		"20220610/auto/storage/goog4_request",
		canonicalRequest,
	)
	digest := sha256.Sum256([]byte(stringToSign))

	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig))
}

func TestKeyFileProvider_EmptyPath(t *testing.T) {
	provider, err := credentials.NewKeyFileProvider("")
	require.NoError(t, err)

	id, err := provider.Identity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = signer.Sign(id, signer.Request{Bucket: "b", Object: "o"}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNoSigningIdentity)
}

func TestKeyFileProvider_MissingFile(t *testing.T) {
	_, err := credentials.NewKeyFileProvider(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestParseKeyFile_RejectsGarbage(t *testing.T) {
	_, err := credentials.ParseKeyFile([]byte(`{"type":"authorized_user"}`))
	assert.Error(t, err)
}

type fakeBlobSigner struct {
	gotName    string
	gotPayload []byte
	err        error
}

func (f *fakeBlobSigner) SignBlob(_ context.Context, req *credentialspb.SignBlobRequest, _ ...gax.CallOption) (*credentialspb.SignBlobResponse, error) {
	f.gotName = req.GetName()
	f.gotPayload = req.GetPayload()
	if f.err != nil {
		return nil, f.err
	}
	return &credentialspb.SignBlobResponse{KeyId: "k1", SignedBlob: []byte{0xDE, 0xAD, 0xBE, 0xEF}}, nil
}

func TestIAMProvider_SignBlob(t *testing.T) {
	fake := &fakeBlobSigner{}
	provider := credentials.NewIAMProviderWithClient(fake, testEmail)

	id, err := provider.Identity(context.Background())
	require.NoError(t, err)

	sig, err := id.SignBytes([]byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, sig)
	assert.Equal(t, "projects/-/serviceAccounts/"+testEmail, fake.gotName)
	assert.Equal(t, []byte("payload"), fake.gotPayload)
	assert.NoError(t, provider.Close())
}

func TestIAMProvider_Error(t *testing.T) {
	provider := credentials.NewIAMProviderWithClient(&fakeBlobSigner{err: errors.New("permission denied")}, testEmail)

	id, err := provider.Identity(context.Background())
	require.NoError(t, err)

	_, err = id.SignBytes([]byte("payload"))
	assert.ErrorContains(t, err, "permission denied")
}

func TestIAMProvider_NoEmail(t *testing.T) {
	provider := credentials.NewIAMProviderWithClient(&fakeBlobSigner{}, "")

	id, err := provider.Identity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}
