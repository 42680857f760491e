package browser

// PageMap is the analyzed structure of a console page
type PageMap struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Elements   []Element `json:"elements"`
	Navigation []NavItem `json:"navigation"`
}

// Element is an interactive element on the page
type Element struct {
	Selector    string `json:"selector"`
	Type        string `json:"type"` // button, dropdown, tree-node, link, select, text, ...
	Text        string `json:"text,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Name        string `json:"name,omitempty"`
	ID          string `json:"id,omitempty"`
}

// NavItem is an entry of the main menu
type NavItem struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Href     string `json:"href"`
}
