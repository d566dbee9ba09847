package web

// Flash is a one-shot notice shown after a redirect.
type Flash struct {
	Type    string `json:"type"` // success, error or info
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// NavItem is one entry of the site navigation.
type NavItem struct {
	Key   string
	Label string
	Path  string
}

// Navigation lists the site pages in menu order.
var Navigation = []NavItem{
	{Key: "home", Label: "Home", Path: "/"},
	{Key: "about", Label: "About", Path: "/about"},
	{Key: "documentation", Label: "Documentation", Path: "/documentation"},
	{Key: "demo", Label: "Demo", Path: "/demo"},
	{Key: "watermarking", Label: "AI Watermarking", Path: "/watermarking"},
	{Key: "resources", Label: "Resources", Path: "/resources"},
	{Key: "contribute", Label: "Contribute", Path: "/contribute"},
	{Key: "contact", Label: "Contact", Path: "/contact"},
}

// Page is the data passed to the layout. Data holds the page view model.
type Page struct {
	Nav       string
	Title     string
	Flash     *Flash
	RequestID string
	Menu      []NavItem
	Data      any
}

// NewPage builds a Page for the navigation entry nav.
func NewPage(nav, title string, data any) *Page {
	return &Page{Nav: nav, Title: title, Menu: Navigation, Data: data}
}
