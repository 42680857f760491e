package widget

import (
	"strings"
)

// DOM conventions of the explorer accordion, bootstrap-treeview and the
// vertical main menu. Tree selectors are relative to the tree element.
const (
	AccordionSelector    = "div.panel-heading h4 a"
	TreeNodeSelector     = "li.list-group-item"
	TreeExpandSelector   = "span.expand-icon"
	TreeIndentSelector   = "span.indent"
	NavPrimarySelector   = ".nav-pf-vertical > ul > li > a"
	NavSecondarySelector = ".nav-pf-secondary-nav > ul > li > a"
	NavActiveSelector    = ".nav-pf-vertical li.active > a"
)

// Accordion is a collapsible explorer panel.
type Accordion struct {
	Name string
}

// IsOpened reports whether the panel is expanded.
func (w Accordion) IsOpened(d Driver) bool {
	el, err := d.FindByText(AccordionSelector, ExactText(w.Name))
	if err != nil {
		return false
	}
	class, _ := el.Attribute("class")
	return !strings.Contains(class, "collapsed")
}

// IsDimmed reports whether the panel is greyed out while a form is open.
func (w Accordion) IsDimmed(d Driver) bool {
	el, err := d.FindByText(AccordionSelector, ExactText(w.Name))
	if err != nil {
		return false
	}
	class, _ := el.Attribute("class")
	return strings.Contains(class, "disabled")
}

// Open expands the panel if needed.
func (w Accordion) Open(d Driver) error {
	el, err := d.FindByText(AccordionSelector, ExactText(w.Name))
	if err != nil {
		return NotFound("accordion", w.Name)
	}
	if w.IsOpened(d) {
		return nil
	}
	return el.Click()
}

// Tree is a bootstrap-treeview. Nodes render as a flat list of items; a
// node's depth is the number of indent spans it carries, and its children
// are the deeper items that follow it.
type Tree struct {
	Locator string
}

// ClickPath expands every node along path and clicks the last one. Each
// name is looked up among the children of the node before it. A node that
// does not exist yields a *CandidateNotFoundError.
func (w Tree) ClickPath(d Driver, path ...string) error {
	root, err := d.Find(w.Locator)
	if err != nil {
		return NotFound("tree", w.Locator)
	}
	parent := -1
	for depth, name := range path {
		// Expanding re-renders the list below the expanded node.
		nodes, err := root.FindAll(TreeNodeSelector)
		if err != nil {
			return err
		}
		idx := childIndex(nodes, parent, depth, name)
		if idx < 0 {
			return NotFound(path[:depth+1]...)
		}
		node := nodes[idx]
		if depth == len(path)-1 {
			return node.Click()
		}
		parent = idx
		expander, err := node.Find(TreeExpandSelector)
		if err != nil {
			continue
		}
		if class, _ := expander.Attribute("class"); strings.Contains(class, "plus") {
			if err := expander.Click(); err != nil {
				return err
			}
		}
	}
	return nil
}

// childIndex returns the position of the node called name at depth inside
// the subtree of nodes[parent], or -1. A parent of -1 means the whole tree.
func childIndex(nodes []Element, parent, depth int, name string) int {
	want := strings.TrimSpace(name)
	for i := parent + 1; i < len(nodes); i++ {
		level := nodeDepth(nodes[i])
		if level < depth {
			break
		}
		if level != depth {
			continue
		}
		if text, err := nodes[i].Text(); err == nil && strings.TrimSpace(text) == want {
			return i
		}
	}
	return -1
}

func nodeDepth(node Element) int {
	indents, err := node.FindAll(TreeIndentSelector)
	if err != nil {
		return 0
	}
	return len(indents)
}

// Navigation is the vertical main menu.
type Navigation struct{}

// Select clicks through the menu levels, e.g. "Services", "My Services".
func (Navigation) Select(d Driver, levels ...string) error {
	for i, level := range levels {
		selector := NavPrimarySelector
		if i > 0 {
			selector = NavSecondarySelector
		}
		el, err := d.FindByText(selector, ExactText(level))
		if err != nil {
			return NotFound(levels[:i+1]...)
		}
		if err := el.Click(); err != nil {
			return err
		}
	}
	return nil
}

// CurrentlySelected returns the active menu path.
func (Navigation) CurrentlySelected(d Driver) []string {
	els, err := d.FindAll(NavActiveSelector)
	if err != nil {
		return nil
	}
	var path []string
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		path = append(path, strings.TrimSpace(text))
	}
	return path
}
