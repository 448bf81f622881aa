// Package justext embeds the justext token ledger and text justifier in a
// Go program, without running the HTTP API.
//
//	client, _ := justext.New(ctx, justext.WithMaxWords(80000))
//	defer client.Close()
//
//	token, _ := client.IssueToken(ctx, "me@example.com")
//	res, err := client.Justify(ctx, token, text)
//	if errors.Is(err, justext.ErrQuotaExceeded) {
//	    // token is out of words
//	}
//	fmt.Println(res.Text)
//
// Usage can be mirrored to Valkey or Redis with WithValkey / WithRedis;
// the in-process ledger stays authoritative.
package justext
