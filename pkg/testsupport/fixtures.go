// Package testsupport holds helpers shared by package tests: a logged-in
// client against the fake backend, token signing and output capture.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/goliatone/go-micomedor/pkg/gateway"
	"github.com/goliatone/go-micomedor/pkg/gateway/gatewaytest"
	"github.com/goliatone/go-micomedor/pkg/session"
)

// Ana is the default logged-in user of Backend.
var Ana = session.User{ID: 9, Username: "ana", AccessToken: "token-ana"}

// signingKey is only used to produce syntactically valid test tokens.
var signingKey = []byte("micomedor-test-signing-key-000000")

// Fixture bundles a fake backend with a client logged in as Ana.
type Fixture struct {
	Server *gatewaytest.Server
	Store  *session.MemoryStore
	Client *gateway.Client
}

// Backend starts a fake backend and a client for it. Extra options are
// passed to gateway.New.
func Backend(t *testing.T, opts ...gateway.Option) *Fixture {
	t.Helper()
	srv := gatewaytest.NewServer(t)
	store := session.NewMemoryStore(Ana)
	client, err := gateway.New(srv.BaseURL(), store, opts...)
	if err != nil {
		t.Fatalf("new gateway client: %v", err)
	}
	return &Fixture{Server: srv, Store: store, Client: client}
}

// SignToken returns an HS256 compact JWT carrying claims.
func SignToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: signingKey}, nil)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput runs render with a buffer, returning both the returned string
// and what was written, so tests can assert they match.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
