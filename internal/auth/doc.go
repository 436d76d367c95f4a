// Package auth provides session-based authentication for the library.
//
// Components:
//
//   - Service: account creation, credential verification, account lockout
//   - SessionManager: SQLite-backed sessions (alexedwards/scs)
//   - Middleware: request authentication and role enforcement
//   - AuthController: login, logout and first-run setup pages
//   - RateLimiter: sliding-window limiter for login attempts
//   - CSRF protection (gorilla/csrf) and security headers
//
// Every request is authenticated from its session cookie. Roles are
// member, librarian and admin; route groups declare the roles they
// require via Middleware.RequireRole at registration time, so there is a
// single authorization point rather than per-handler checks.
package auth
