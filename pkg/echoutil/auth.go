package echoutil

import (
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/carg563/Awhina-2-Testing-Portal/pkg/api/types/errors"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

const credentialKey = "portal-credential"

// CredentialAuth authenticates each request against the GIS portal.
//
// The caller sends its portal token as a bearer token and its account
// name in X-Portal-User. The middleware asks the portal for the caller's
// memberships in the admin groups; the portal rejects a stale token, and
// an empty membership list rejects a valid token of a non-operator.
//
// The verified credential is stored on the echo context (see Credential).
func CredentialAuth(gateway func(gis.Credential) gis.Gateway, adminGroupIDs []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred := gis.Credential{
				Username: c.Request().Header.Get("X-Portal-User"),
				Token:    bearerToken(c),
			}
			if cred.Token == "" {
				return apierr.Unauthorized("send your portal token as a bearer token", nil)
			}

			groups, err := gateway(cred).Community().Memberships(
				c.Request().Context(), adminGroupIDs,
			)
			if err != nil {
				if gis.IsUnauthorized(err) {
					return apierr.Unauthorized("your portal token is expired or invalid", err)
				}
				return apierr.InternalServerError(err)
			}
			if len(groups) == 0 {
				return apierr.Unauthorized("your account is not in an operator group", nil)
			}

			SetCredential(c, cred)
			return next(c)
		}
	}
}

// SetCredential stores the verified credential on the context.
func SetCredential(c echo.Context, cred gis.Credential) {
	c.Set(credentialKey, cred)
}

// Credential returns the credential verified by CredentialAuth.
func Credential(c echo.Context) gis.Credential {
	cred, _ := c.Get(credentialKey).(gis.Credential)
	return cred
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
