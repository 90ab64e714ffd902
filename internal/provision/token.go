package provision

import "net/url"

// installGitToken rewrites github URLs to authenticated HTTPS.
func (h *Host) installGitToken() error {
	base := tokenURL(h.settings.GitToken)
	return h.editGitConfig(func(gc *gitConfig) {
		gc.insteadOf(base, githubHTTPS)
		if h.settings.GitTokenReplaceSSH {
			gc.insteadOf(base, githubSSH)
			gc.insteadOf(base, githubSSHURL)
		}
	})
}

func tokenURL(token string) string {
	u := url.URL{
		Scheme: "https",
		User:   url.UserPassword("x-access-token", token),
		Host:   "github.com",
		Path:   "/",
	}
	return u.String()
}
