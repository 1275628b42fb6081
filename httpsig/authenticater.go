// Package httpsig implements the HTTP Signatures primitive KERIA agent
// clients use to authenticate requests: an Authenticater wraps a Signer
// and signs a canonical base built from the method, path, an optional
// signify-resource value, and a timestamp, then renders the Signature and
// Signature-Input header values.
package httpsig

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/keys"
)

// Authenticater signs outgoing requests on behalf of one Signer.
type Authenticater struct {
	signer *keys.Signer
}

// NewAuthenticater builds an Authenticater for signer.
func NewAuthenticater(signer *keys.Signer) *Authenticater {
	return &Authenticater{signer: signer}
}

// Sign builds the Signature and Signature-Input header values for a
// request. headers carries the request's own headers; if it holds a
// "Signify-Resource" value that value is witnessed in the signature base,
// otherwise resourcePrefix is used if non-empty, otherwise the component
// is omitted entirely. created timestamps the signature base and the
// @signature-params line; per the reference implementation (which stamps
// each of its signature-params and Signature-Input lines with its own
// independent chrono::Utc::now() call), Signature-Input's created value is
// obtained a second time, independently, at header-construction time
// rather than reusing created — do not collapse the two without a
// reference implementation to verify the change against.
func (a *Authenticater) Sign(method, path string, headers http.Header, created time.Time, resourcePrefix string) (sigHeader, sigInputHeader string, err error) {
	resource := ""
	if headers != nil {
		resource = headers.Get("Signify-Resource")
	}
	if resource == "" {
		resource = resourcePrefix
	}

	fields := []string{"@method", "@path"}
	components := []string{
		fmt.Sprintf("%q: %s", "@method", method),
		fmt.Sprintf("%q: %s", "@path", path),
	}
	if resource != "" {
		fields = append(fields, "signify-resource")
		components = append(components, fmt.Sprintf("%q: %s", "signify-resource", resource))
	}
	fields = append(fields, "signify-timestamp")
	components = append(components, fmt.Sprintf("%q: %s", "signify-timestamp", created.UTC().Format(time.RFC3339)))

	keyid := a.signer.Verfer().Qb64()
	fieldList := "(" + strings.Join(fields, " ") + ")"

	sigParamsLine := fmt.Sprintf(
		"%q: %s;created=%d;keyid=%q;alg=%q",
		"@signature-params", fieldList, created.Unix(), keyid, "ed25519",
	)

	signatureBase := strings.Join(components, "\n") + "\n" + sigParamsLine

	sig := a.signer.Sign([]byte(signatureBase))
	sigMatter, err := codec.FromRaw(sig, codec.CodeED25519Sig)
	if err != nil {
		return "", "", err
	}

	sigHeader = fmt.Sprintf("signify=:%s:", sigMatter.Qb64())

	inputCreated := time.Now()
	sigInputHeader = fmt.Sprintf(
		"signify=%s;created=%d;keyid=%q;alg=%q",
		fieldList, inputCreated.Unix(), keyid, "ed25519",
	)

	return sigHeader, sigInputHeader, nil
}
