// Package uniview provides a client for the Uniview VMS platform.
//
// Logins are challenge-response: the client fetches a server-issued access
// code, derives MD5(base64(username) + accessCode + MD5(password)) and
// submits it as a login signature. When the challenge response already
// carries a reusable token the second round trip is skipped entirely
// (session resumption). Login attempts retry with exponential backoff up to
// a fixed ceiling before surfacing an auth failure.
//
// Uniview sessions decay without activity, so the client runs a background
// keep-alive that touches the platform periodically and re-logs in when the
// touch fails. The keep-alive starts on the first successful login and is
// stopped only by Close; forgetting Close leaks a goroutine.
//
//	client, err := uniview.NewClient(uniview.Config{
//		Host:     "vms.example.com",
//		Username: "admin",
//		Password: "admin123",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	devices, err := client.ListDevices(ctx)
//
// The login's second step submits a JSON-encoded string with a text/plain
// content type. The platform rejects a regular JSON object body, so the
// quirk is preserved exactly.
package uniview
