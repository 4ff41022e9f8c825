// Package farmsdk is a Go client for the farmstead API.
//
// Unauthenticated calls (health checks, billing webhooks) go through a
// Client; everything under /v1 that acts for a user goes through a Session
// carrying that user's bearer token:
//
//	c := farmsdk.NewClient("http://localhost:8080")
//	s := c.WithToken(accessToken)
//
//	acct, err := s.Register(ctx, farmsdk.RegisterRequest{DisplayName: "Dana"})
//	inv, err := s.Invite(ctx, acct.Farm.ID, farmsdk.InviteRequest{
//		Email: "sam@example.com",
//		Role:  "editor",
//	})
//
// Failed calls return *APIError; match its Code against the ErrorCode
// constants, or use errors.Is with the predefined errors.
package farmsdk
