package session

import "time"

// Section is one navigable region of a page.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Role  string `json:"role" yaml:"role"` // ARIA role: main, region, contentinfo, ...
}

// SectionMap describes a page's navigable regions plus optional spoken
// aliases mapping synonyms to section ids.
type SectionMap struct {
	Title    string            `json:"title"`
	Sections []Section         `json:"sections"`
	Aliases  map[string]string `json:"aliases,omitempty"`
}

// ResolveAlias maps a spoken synonym to a section id. Returns the input
// unchanged when it is already a known section id or has no alias.
func (m *SectionMap) ResolveAlias(name string) string {
	if m == nil {
		return name
	}
	for _, s := range m.Sections {
		if s.ID == name {
			return name
		}
	}
	if target, ok := m.Aliases[name]; ok {
		return target
	}
	return name
}

// Session binds a client to a page's URL, locale, and section map for a
// bounded time window.
type Session struct {
	ID         string     `json:"session_id"`
	URL        string     `json:"url"`
	Locale     string     `json:"locale"`
	Voice      string     `json:"voice"`
	SectionMap SectionMap `json:"section_map"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}
