package service_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
	"lcutils/internal/service"
	"lcutils/internal/signer"
	"lcutils/mocks"
)

var signingNow = time.Date(2022, 6, 10, 12, 0, 0, 0, time.UTC)

func newSignedURLService(creds *mocks.MockCredentialProvider) port.URLSigner {
	return service.NewSignedURLService(
		signer.NewSigner(testingclock.NewFakePassiveClock(signingNow)),
		creds,
		&config.SigningConfig{DefaultExpiry: 900},
		testLogger(),
	)
}

func fakeIdentity() *mocks.MockIdentity {
	id := new(mocks.MockIdentity)
	id.On("ServiceAccountEmail").Return("signer@proj.iam.gserviceaccount.com")
	id.On("SignBytes", mock.Anything).Return([]byte{0xde, 0xad, 0xbe, 0xef}, nil)
	return id
}

func TestSignedURLService_DefaultExpiry(t *testing.T) {
	creds := new(mocks.MockCredentialProvider)
	creds.On("Identity", mock.Anything).Return(fakeIdentity(), nil)
	svc := newSignedURLService(creds)

	out, err := svc.SignedURL(context.Background(), port.SignedURLInput{
		Bucket: "fuelcast-data",
		Key:    "projections/a.tif",
	})
	require.NoError(t, err)

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	assert.Equal(t, "fuelcast-data.storage.googleapis.com", u.Host)
	assert.Equal(t, "900", u.Query().Get("X-Goog-Expires"))
	assert.Equal(t, "deadbeef", u.Query().Get("x-goog-signature"))
	assert.Equal(t, "GET", out.Method)
	assert.Equal(t, signingNow.Add(900*time.Second), out.ExpiresAt)
}

func TestSignedURLService_ExplicitExpiryAndMethod(t *testing.T) {
	creds := new(mocks.MockCredentialProvider)
	creds.On("Identity", mock.Anything).Return(fakeIdentity(), nil)
	svc := newSignedURLService(creds)

	out, err := svc.SignedURL(context.Background(), port.SignedURLInput{
		Bucket:            "b",
		Key:               "k",
		Method:            "PUT",
		ExpirationSeconds: 60,
		Headers:           map[string]string{"Content-Type": "image/tiff"},
	})
	require.NoError(t, err)

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	assert.Equal(t, "60", u.Query().Get("X-Goog-Expires"))
	assert.Equal(t, "content-type;host", u.Query().Get("X-Goog-SignedHeaders"))
	assert.Equal(t, "PUT", out.Method)
}

func TestSignedURLService_ProviderError(t *testing.T) {
	creds := new(mocks.MockCredentialProvider)
	creds.On("Identity", mock.Anything).Return(nil, errors.New("metadata server unreachable"))
	svc := newSignedURLService(creds)

	out, err := svc.SignedURL(context.Background(), port.SignedURLInput{Bucket: "b", Key: "k"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrNoSigningIdentity)
}

func TestSignedURLService_NilIdentity(t *testing.T) {
	creds := new(mocks.MockCredentialProvider)
	creds.On("Identity", mock.Anything).Return(nil, nil)
	svc := newSignedURLService(creds)

	_, err := svc.SignedURL(context.Background(), port.SignedURLInput{Bucket: "b", Key: "k"})
	assert.ErrorIs(t, err, domain.ErrNoSigningIdentity)
}

func TestSignedURLService_ExpirationTooLong(t *testing.T) {
	creds := new(mocks.MockCredentialProvider)
	creds.On("Identity", mock.Anything).Return(fakeIdentity(), nil)
	svc := newSignedURLService(creds)

	_, err := svc.SignedURL(context.Background(), port.SignedURLInput{
		Bucket: "b", Key: "k", ExpirationSeconds: 604801,
	})
	assert.ErrorIs(t, err, domain.ErrExpirationTooLong)
}

func TestSignedURLService_MatchesCoreAtClockTime(t *testing.T) {
	id := fakeIdentity()
	creds := new(mocks.MockCredentialProvider)
	creds.On("Identity", mock.Anything).Return(id, nil)
	svc := newSignedURLService(creds)

	out, err := svc.SignedURL(context.Background(), port.SignedURLInput{
		Bucket:            "fuelcast-data",
		Key:               "projections/a b.tif",
		Method:            domain.MethodPut,
		ExpirationSeconds: 60,
		Headers:           map[string]string{"Content-Type": "image/tiff"},
	})
	require.NoError(t, err)

	want, err := signer.Sign(id, signer.Request{
		Bucket:            "fuelcast-data",
		Object:            "projections/a b.tif",
		Method:            domain.MethodPut,
		ExpirationSeconds: 60,
		Headers:           map[string]string{"Content-Type": "image/tiff"},
	}, signingNow)
	require.NoError(t, err)
	assert.Equal(t, want, out.URL)
}
