// Package auth is the authentication boundary of the reader.
//
// Sign-in, sign-up and session restoration belong to the authentication
// provider. This package only answers "who is the current user, if anyone"
// through the Identity interface, and resolves API bearer tokens to
// identities.
//
// # Configuration
//
//	AUTH_MODE=none   # Default, every request is anonymous
//	AUTH_MODE=token  # Bearer tokens created with `reader create-user`
//
// # Usage
//
//	authService := auth.NewService(usersRepo)
//	authMiddleware := auth.NewMiddleware(authService, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract the identity in handlers:
//
//	identity := auth.GetIdentity(c) // auth.Anonymous when no token was sent
package auth
