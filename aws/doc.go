// Package aws groups the adapters for host-proxied AWS services.
//
// Every service client borrows a credentials provider from package auth
// for its whole lifetime, so the provider must be released last:
//
//	provider, err := auth.NewProvider(ctx, "us-east-1", creds)
//	if err != nil {
//		return err
//	}
//	defer provider.Close()
//
//	table, err := ddb.NewClient(ctx, provider)
//	if err != nil {
//		return err
//	}
//	defer table.Close()
package aws
