// Package social maps brokered identity providers to the labels and icons
// shown on login and registration pages.
package social

import (
	"embed"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
	"github.com/goliatone/go-kctheme/pkg/sanitize"
)

//go:embed icons/*.svg
var iconFiles embed.FS

// GenericLabel is the accessible label of the fallback icon.
const GenericLabel = "Sign in"

type known struct {
	label string
	icon  string
}

var providers = map[string]known{
	"google":    {label: "Google", icon: "google"},
	"apple":     {label: "Apple", icon: "apple"},
	"microsoft": {label: "Microsoft", icon: "microsoft"},
	"facebook":  {label: "Facebook", icon: "facebook"},
	"github":    {label: "GitHub", icon: "github"},
	"twitter":   {label: "X", icon: "x"},
	"x":         {label: "X", icon: "x"},
	"linkedin":  {label: "LinkedIn", icon: "linkedin"},
	"discord":   {label: "Discord", icon: "discord"},
}

func lookup(name string) (known, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if entry, ok := providers[key]; ok {
		return entry, true
	}
	// Keycloak provider ids such as "linkedin-openid-connect".
	if head, _, found := strings.Cut(key, "-"); found {
		entry, ok := providers[head]
		return entry, ok
	}
	return known{}, false
}

// Label returns the brand name for alias, else fallback, else alias.
func Label(alias, fallback string) string {
	if entry, ok := lookup(alias); ok {
		return entry.label
	}
	if trimmed := strings.TrimSpace(fallback); trimmed != "" {
		return trimmed
	}
	return alias
}

// Icon is a sanitized inline SVG with its accessible label.
type Icon struct {
	Label  string
	SVG    string
	Known  bool
	Source string
}

var (
	iconMu    sync.Mutex
	iconCache = map[string]string{}
)

// IconFor returns the icon of provider. Unknown providers get the generic
// icon labelled GenericLabel.
func IconFor(provider string) Icon {
	if entry, ok := lookup(provider); ok {
		if svg := loadIcon(entry.icon); svg != "" {
			return Icon{Label: entry.label, SVG: svg, Known: true, Source: entry.icon}
		}
	}
	return Icon{Label: GenericLabel, SVG: loadIcon("generic"), Source: "generic"}
}

func loadIcon(name string) string {
	iconMu.Lock()
	defer iconMu.Unlock()
	if svg, ok := iconCache[name]; ok {
		return svg
	}
	raw, err := iconFiles.ReadFile(path.Join("icons", name+".svg"))
	if err != nil {
		return ""
	}
	svg := sanitize.SVG(string(raw))
	iconCache[name] = svg
	return svg
}

// Link is the view model of one provider button.
type Link struct {
	ID          string
	Alias       string
	Href        string
	Label       string
	Title       string
	Icon        Icon
	IconClasses string
}

// Links builds provider buttons. title formats the button title from the
// label, for example "Continue with Google".
func Links(providers []kccontext.Provider, title func(label string) string) []Link {
	out := make([]Link, 0, len(providers))
	for _, provider := range providers {
		if strings.TrimSpace(provider.Alias) == "" {
			continue
		}
		label := Label(provider.Alias, provider.DisplayName)
		icon := IconFor(provider.Alias)
		if !icon.Known && provider.ProviderID != "" {
			icon = IconFor(provider.ProviderID)
		}
		link := Link{
			ID:          "social-" + provider.Alias,
			Alias:       provider.Alias,
			Href:        provider.LoginURL,
			Label:       label,
			Title:       label,
			Icon:        icon,
			IconClasses: provider.IconClasses,
		}
		if title != nil {
			link.Title = title(label)
		}
		out = append(out, link)
	}
	return out
}
