package identity

// Identity is the network identity used for one or more fetch
// attempts. Once issued it is never mutated; rotation replaces the
// active identity with a fresh value.
type Identity struct {
	// Proxy is the proxy endpoint URL (http://, https:// or socks5://
	// scheme, optionally with user:pass credentials). Empty means a
	// direct connection.
	Proxy string

	// UserAgent is the User-Agent header value.
	UserAgent string

	// AcceptLanguage is the Accept-Language header value.
	AcceptLanguage string
}

// HasProxy reports whether the identity routes through a proxy.
func (id Identity) HasProxy() bool {
	return id.Proxy != ""
}

// defaultUserAgents is the curated pool used when the caller did not
// pin a user agent. These mirror current mainstream browser strings;
// a bot-identifying UA would defeat the rotation.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

// defaultAcceptLanguages is the curated Accept-Language pool.
var defaultAcceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.8",
	"en-CA,en;q=0.9",
}
