package httpclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewHTTPClientWithBrowserCookies creates an HTTP client whose cookie jar is
// seeded from a live browser session's cookies. The portal's document
// endpoint requires the ASP.NET session established during navigation, so
// direct downloads have to replay that session.
func NewHTTPClientWithBrowserCookies(cookies []*network.Cookie, fallbackHost string, timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}

	// Group cookies by domain to set them with appropriate URLs.
	// This ensures the cookie jar accepts cookies based on their declared domain.
	cookiesByDomain := make(map[string][]*http.Cookie)
	for _, c := range cookies {
		// Expires <= 0 means a session cookie. Expired cookies are also kept
		// as session cookies so the jar does not silently drop them while the
		// server-side session is still alive.
		var expires time.Time
		if c.Expires > 0 {
			expires = time.Unix(int64(c.Expires), 0)
			if expires.Before(time.Now()) {
				expires = time.Time{}
			}
		}

		httpCookie := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}

		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" {
			domain = fallbackHost
		}

		cookiesByDomain[domain] = append(cookiesByDomain[domain], httpCookie)
	}

	for domain, domainCookies := range cookiesByDomain {
		domainURL, err := url.Parse(fmt.Sprintf("https://%s/", domain))
		if err != nil {
			continue
		}
		client.Jar.SetCookies(domainURL, domainCookies)
	}

	return client, nil
}
