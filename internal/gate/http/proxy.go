package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// NewIdPProxy forwards /casdoor-api/* to the identity provider so
// browser clients can reach it through the gateway's single origin. The
// prefix is stripped before forwarding.
func NewIdPProxy(idpBaseURL string) (http.Handler, error) {
	target, err := url.Parse(idpBaseURL)
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, "/casdoor-api")
			pr.Out.Host = target.Host
		},
	}
	return proxy, nil
}
