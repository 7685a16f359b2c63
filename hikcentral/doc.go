// Package hikcentral provides a client for the HikCentral OpenAPI gateway.
//
// HikCentral authenticates every request individually with an AK/SK
// HMAC-SHA256 signature carried in x-ca-* headers; there is no session or
// token to maintain. The client signs transparently, so callers only deal
// with business endpoints:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := hikcentral.NewClient(hikcentral.Config{
//		Host:      "hikcentral.example.com",
//		AppKey:    "21234567",
//		AppSecret: "secret",
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	cameras, err := client.ListCameras(ctx)
//
// Endpoints without a typed wrapper are reachable through Request, which
// goes through the identical signing and error-classification path.
//
// All failures are classified into the apierr taxonomy: a 2xx response whose
// body carries a non-zero business code is an API error, 401/403 is an auth
// error, and transport failures are network or timeout errors.
package hikcentral
