package api

// The authorization policy is global and stateless: it looks only at the
// response status (401) and the client's current location. On a protected
// location it clears the cached identity and emits a forced sign-out event
// for the top-level listener to act on. On a public location it stays out of
// the way so in-flow auth failures (an explicit login attempt, a cold-start
// probe) reach their callers untouched.

var publicLocations = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
}

// LoginLocation is where the forced sign-out listener is expected to land.
const LoginLocation = "/login"

func (c *Client) enforceAuthPolicy() {
	location := "/"
	if c.locationFn != nil {
		location = c.locationFn()
	}

	if publicLocations[location] {
		c.log.Debug().Str("location", location).Msg("Unauthorized on public location, letting the caller handle it")
		return
	}

	c.log.Warn().Str("location", location).Msg("Unauthorized on protected location, forcing sign-out")
	if c.identity != nil {
		c.identity.Clear()
	}
	if c.signOutFn != nil {
		c.signOutFn("session expired or invalid")
	}
}
