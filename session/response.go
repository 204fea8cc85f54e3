package session

import (
	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/internal/utils"
	"github.com/jrsteele09/go-admin-console/users"
)

// Shape records which login response layout was recognised.
type Shape string

const (
	// ShapeNested: {"data": {"access_token": ...}}
	ShapeNested Shape = "nested"
	// ShapeFlat: {"access_token": ...} or {"token": ...}
	ShapeFlat Shape = "flat"
	// ShapeRaw: nothing matched, the payload itself is used as the bundle.
	ShapeRaw Shape = "raw"
)

const genericFailureMessage = "Something went wrong. Please try again."

// LoginResult is the outcome of parsing a login or register response.
// Profile is nil unless the payload embedded a user object.
type LoginResult struct {
	Bundle  *credentials.Bundle
	Profile users.Profile
	Shape   Shape
}

// ParseLoginResponse accepts the login payload layouts seen across backend
// deployments. The raw fallback may produce a bundle without a usable token.
func ParseLoginResponse(payload any) LoginResult {
	root := utils.AsMap(payload)
	result := LoginResult{Profile: embeddedUser(root)}

	if data := utils.AsMap(root["data"]); utils.FirstString(data, "access_token", "token") != "" {
		result.Shape = ShapeNested
		result.Bundle = bundleFromMap(data, false)
		return result
	}
	if utils.FirstString(root, "access_token", "token") != "" {
		result.Shape = ShapeFlat
		result.Bundle = bundleFromMap(root, true)
		return result
	}

	result.Shape = ShapeRaw
	if s, ok := payload.(string); ok {
		result.Bundle = &credentials.Bundle{AccessToken: s}
		return result
	}
	result.Bundle = bundleFromMap(root, false)
	return result
}

// ParseRegisterResponse expects the bundle directly under "data".
func ParseRegisterResponse(payload any) LoginResult {
	root := utils.AsMap(payload)
	return LoginResult{
		Bundle:  bundleFromMap(utils.AsMap(root["data"]), false),
		Profile: embeddedUser(root),
		Shape:   ShapeNested,
	}
}

func bundleFromMap(m map[string]any, defaultAPIToken bool) *credentials.Bundle {
	b := &credentials.Bundle{
		AccessToken:  utils.FirstString(m, "access_token", "token"),
		APIToken:     utils.FirstString(m, "api_token"),
		RefreshToken: utils.FirstString(m, "refresh_token"),
	}
	if defaultAPIToken && b.APIToken == "" {
		b.APIToken = b.AccessToken
	}
	return b
}

func embeddedUser(root map[string]any) users.Profile {
	if p := users.FromAny(root["user"]); p != nil {
		return p
	}
	return users.FromAny(utils.AsMap(root["data"])["user"])
}

// ExtractMessage finds the most helpful human-readable text for a failed
// request: the backend's message, error or errors.message fields, a raw
// string body, the transport message, then a generic fallback.
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}
	reqErr, ok := apiclient.AsRequestError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return genericFailureMessage
	}

	if body := utils.AsMap(reqErr.Payload); body != nil {
		if msg := utils.FirstString(body, "message", "error"); msg != "" {
			return msg
		}
		if msg := utils.FirstString(utils.AsMap(body["errors"]), "message"); msg != "" {
			return msg
		}
	}
	if raw, ok := reqErr.Payload.(string); ok && raw != "" {
		return raw
	}
	if reqErr.Message != "" {
		return reqErr.Message
	}
	return genericFailureMessage
}
