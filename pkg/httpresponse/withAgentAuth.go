package httpresponse

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ecoci/ecoci/pkg/merrors"
)

const agentAuthScheme = "CraterToken"

// AgentTokenFunc reports whether token is a registered agent bearer
// token and, if so, the agent name it authenticates as.
type AgentTokenFunc func(token string) (agentName string, ok bool)

// WithAgentAuth enforces the "Authorization: CraterToken <token>"
// scheme spec'd for the agent-facing API: every agent-api route is
// behind a static, per-agent bearer token rather than session cookies
// or JWT, since the only caller is the fleet of agent processes
// themselves.
func WithAgentAuth(lookup AgentTokenFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return WithAgentError(c, merrors.UnauthorizedError{
				Code:    "0011",
				Message: "missing Authorization header",
			})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || subtle.ConstantTimeCompare([]byte(parts[0]), []byte(agentAuthScheme)) != 1 {
			return WithAgentError(c, merrors.UnauthorizedError{
				Code:    "0011",
				Message: "Authorization header must use the CraterToken scheme",
			})
		}

		name, ok := lookup(parts[1])
		if !ok {
			return WithAgentError(c, merrors.UnauthorizedError{
				Code:    "0010",
				Message: "unrecognized agent token",
			})
		}

		c.Locals("agentName", name)

		return c.Next()
	}
}

// AgentNameFromLocals returns the agent name WithAgentAuth attached to
// the request, or "" if the middleware never ran.
func AgentNameFromLocals(c *fiber.Ctx) string {
	name, _ := c.Locals("agentName").(string)

	return name
}
