package password

import (
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
)

func TestHashAndVerify_Success(t *testing.T) {
	t.Parallel()

	digest, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("unexpected digest prefix: %q", digest)
	}
	if !Verify("correct horse battery staple", digest) {
		t.Fatal("expected password to verify")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	t.Parallel()

	digest, err := Hash("pw1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if Verify("pw2", digest) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHash_SaltedDigestsDiffer(t *testing.T) {
	t.Parallel()

	a, err := Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("two digests of the same password must differ (random salt)")
	}
	if !Verify("pw", a) || !Verify("pw", b) {
		t.Fatal("both digests must verify")
	}
}

func TestVerify_MalformedDigest(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-digest",
		"$argon2id$v=19$m=65536,t=3,p=1$short",
		"$bcrypt$v=19$m=1,t=1,p=1$AAAA$BBBB",
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$BBBB",
	}
	for _, c := range cases {
		if Verify("pw", c) {
			t.Fatalf("malformed digest %q must not verify", c)
		}
	}
}

// Digests created with different parameters keep verifying, since parameters
// travel inside the PHC string.
func TestVerify_ToleratesParameterDrift(t *testing.T) {
	t.Parallel()

	digest := "$argon2id$v=19$m=32768,t=2,p=2$" +
		"c29tZXNhbHRzb21lc2FsdA" + "$" +
		// argon2.IDKey("pw", "somesaltsomesalt", t=2, m=32768, p=2, len=32)
		computeLegacy(t)

	if !Verify("pw", digest) {
		t.Fatal("digest with non-default parameters must verify")
	}
}

func computeLegacy(t *testing.T) string {
	t.Helper()
	// Build the reference hash segment with the same primitives the verifier
	// uses; the point of the test is that decodePHC picks the non-default
	// parameters up from the string.
	raw := argon2.IDKey([]byte("pw"), []byte("somesaltsomesalt"), 2, 32768, 2, 32)
	return base64.RawStdEncoding.EncodeToString(raw)
}
