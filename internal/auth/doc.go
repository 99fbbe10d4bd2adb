// Package auth provides bearer-token authentication and role-based
// authorisation for the devmodel HTTP API.
//
// Tokens are HS256-signed JWTs carrying a subject and a role. There is no
// user database: an operator mints tokens with "devmodel token" using the
// configured secret, and the API validates them by signature alone.
//
// Roles form a ladder:
//
//	viewer   -> read the tree, types, device state and journal
//	operator -> viewer + hot-plug and unplug devices
//	admin    -> operator + reset the machine
package auth
