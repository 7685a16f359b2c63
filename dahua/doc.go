// Package dahua provides a client for the Dahua ICC platform gateway.
//
// ICC logins are password-based with an asymmetric twist: the client fetches
// the platform's RSA public key, encrypts the account password with it, and
// exchanges the encrypted blob plus OAuth client credentials for an opaque
// access token. The token has a declared lifetime; the client tracks expiry
// with a safety margin and re-logs in transparently, so callers never see
// the token lifecycle:
//
//	client, err := dahua.NewClient(dahua.Config{
//		Host:         "icc.example.com",
//		Username:     "system",
//		Password:     "admin123",
//		ClientID:     "web_client",
//		ClientSecret: "secret",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	devices, err := client.ListDevices(ctx)
//
// A request that comes back 401/403 invalidates the session, re-logs in and
// is retried exactly once. Errors follow the apierr taxonomy.
package dahua
