package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/ContentWarnings/Backend/pkg/hash"
)

const (
	localVoterToken = "voterToken"
	localClaims     = "claims"
)

// CloudflareIPHeader carries the real client address when requests arrive
// through the Cloudflare edge.
const CloudflareIPHeader = "CF-Connecting-IP"

// TrustProxies configures the app so ClientIP honours CloudflareIPHeader
// only on connections from the given addresses or CIDRs. With no proxies the
// header is always ignored.
func TrustProxies(cfg *fiber.Config, proxies []string) {
	cfg.TrustProxy = len(proxies) > 0
	cfg.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: proxies}
}

// ClientIP returns the caller's address. CloudflareIPHeader is used only
// when the connection comes from a trusted proxy.
func ClientIP(c fiber.Ctx) string {
	if c.App().Config().TrustProxy && c.IsProxyTrusted() {
		if ip := strings.TrimSpace(c.Get(CloudflareIPHeader)); ip != "" {
			return ip
		}
	}
	return c.IP()
}

// VoterIdentity derives the caller's voter token from their IP. The raw IP
// is never stored.
func VoterIdentity(hasher *hash.IdentityHasher) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(localVoterToken, hasher.Token(ClientIP(c)))
		return c.Next()
	}
}

// VoterToken returns the token set by VoterIdentity, or "".
func VoterToken(c fiber.Ctx) string {
	tok, _ := c.Locals(localVoterToken).(string)
	return tok
}
