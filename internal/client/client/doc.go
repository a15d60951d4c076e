// Package client talks to the StudentHub collection services over HTTP+JSON.
//
// # Overview
//
// HTTPClient covers every remote operation the client needs: authentication
// (Register, Login, ForgotPassword, ResetPassword), profile (Profile,
// UpdateProfile, Stats), the uniform collection contract (List, Create,
// Update, Delete) and the feed extras (ToggleLike, AddComment, DeleteComment).
// Each service may live at its own base URL, see Endpoints.
//
// # Error Handling
//
// Responses are mapped to sentinel errors from the common package that
// callers match with errors.Is:
//
//   - 401 -> common.ErrUnauthorized
//   - 403 -> common.ErrForbidden
//   - 404 -> common.ErrNotFound
//   - 409 -> common.ErrConflict
//   - 400 -> *validate.ValidationError
//
// Anything else, including transport failures and malformed bodies, is
// common.ErrUnavailable, which the caller treats as "stay offline".
package client
