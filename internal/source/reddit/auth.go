package reddit

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// InstalledClientGrant is the grant type for apps without a secret.
const InstalledClientGrant = "https://oauth.reddit.com/grants/installed_client"

// DefaultDeviceID asks the token endpoint not to track this client.
const DefaultDeviceID = "DO_NOT_TRACK_THIS_DEVICE"

// tokenClient returns an HTTP client that attaches a bearer token obtained
// with the installed-client grant. The client id is sent as basic auth
// with an empty secret. base carries the transport used for both the
// token request and API calls.
func tokenClient(ctx context.Context, base *http.Client, tokenURL, clientID, deviceID string) *http.Client {
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	cfg := clientcredentials.Config{
		ClientID: clientID,
		TokenURL: tokenURL,
		EndpointParams: url.Values{
			"grant_type": {InstalledClientGrant},
			"device_id":  {deviceID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	c := cfg.Client(ctx)
	c.Timeout = base.Timeout
	return c
}

// userAgent sets the User-Agent header on every request.
type userAgent struct {
	next  http.RoundTripper
	value string
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if u.value == "" {
		return u.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", u.value)
	return u.next.RoundTrip(req)
}
