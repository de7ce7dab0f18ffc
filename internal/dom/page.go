package dom

import (
	"strings"

	"github.com/antchfx/htmlquery"
)

// ViewerFromPage extracts the signed-in user's login from host page
// metadata. It checks <meta name="user-login"> first, then the alt text
// of the avatar in the profile menu ("@login"). Returns "" when neither
// is present.
func ViewerFromPage(d *Document) string {
	if d == nil {
		return ""
	}
	if meta := htmlquery.FindOne(d.root, `//meta[@name='user-login']`); meta != nil {
		if login := strings.TrimSpace(Attr(meta, "content")); login != "" {
			return login
		}
	}
	avatar := htmlquery.FindOne(d.root, `//summary[contains(@aria-label, 'View profile')]//img`)
	if avatar != nil {
		alt := strings.TrimSpace(Attr(avatar, "alt"))
		if strings.HasPrefix(alt, "@") && len(alt) > 1 {
			return alt[1:]
		}
	}
	return ""
}
