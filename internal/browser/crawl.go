package browser

import (
	"fmt"
	"time"
)

// Crawl extracts a PageMap from the current page state. It is the input for
// drafting scripted steps.
func (b *Browser) Crawl() (*PageMap, error) {
	page := b.page

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	// Don't hang on the console's long-polling notification requests
	page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()

	title, err := page.Eval(`() => document.title`)
	if err != nil {
		return nil, fmt.Errorf("read title: %w", err)
	}

	elements, err := b.extractElements()
	if err != nil {
		return nil, err
	}
	navigation, err := b.extractNavigation()
	if err != nil {
		return nil, err
	}

	return &PageMap{
		URL:        b.URL(),
		Title:      title.Value.String(),
		Elements:   elements,
		Navigation: navigation,
	}, nil
}

// extractElements finds interactive elements on the page
func (b *Browser) extractElements() ([]Element, error) {
	result, err := b.page.Eval(`() => {
		const elements = [];
		const seen = new Set();

		function isValidIdent(s) {
			return !!s && !/^-?[0-9]/.test(s) && !/[.:#\[\]()>~+*\/\\]/.test(s);
		}

		function getSelector(el) {
			if (el.id && isValidIdent(el.id)) return '#' + el.id;
			if (el.name) return el.tagName.toLowerCase() + '[name="' + el.name + '"]';
			if (el.dataset && el.dataset.id) return el.tagName.toLowerCase() + '[data-id="' + el.dataset.id + '"]';
			if (el.title) return el.tagName.toLowerCase() + '[title="' + el.title + '"]';
			const parent = el.parentElement;
			if (parent) {
				const index = Array.from(parent.children).indexOf(el) + 1;
				return getSelector(parent) + ' > ' + el.tagName.toLowerCase() + ':nth-child(' + index + ')';
			}
			return el.tagName.toLowerCase();
		}

		function push(el, type) {
			if (!el.offsetParent) return;
			const selector = getSelector(el);
			if (seen.has(selector)) return;
			seen.add(selector);
			elements.push({
				selector: selector,
				type: type,
				text: (el.textContent || el.value || '').trim().slice(0, 50),
				placeholder: el.placeholder || undefined,
				id: el.id || undefined,
				name: el.name || undefined
			});
		}

		document.querySelectorAll('div.btn-group > button').forEach(el => push(el, 'dropdown'));
		document.querySelectorAll('li.list-group-item').forEach(el => push(el, 'tree-node'));
		document.querySelectorAll('button, [role="button"], input[type="submit"]').forEach(el => push(el, 'button'));
		document.querySelectorAll('input:not([type="hidden"]):not([type="submit"]), textarea').forEach(el => push(el, el.type || 'text'));
		document.querySelectorAll('select').forEach(el => push(el, 'select'));
		document.querySelectorAll('a[href]').forEach(el => {
			const href = el.getAttribute('href');
			if (href.startsWith('javascript:')) return;
			push(el, 'link');
		});

		return elements;
	}`)
	if err != nil {
		return nil, fmt.Errorf("extract elements: %w", err)
	}

	var elements []Element
	for _, v := range result.Value.Arr() {
		elements = append(elements, Element{
			Selector:    v.Get("selector").String(),
			Type:        v.Get("type").String(),
			Text:        v.Get("text").String(),
			Placeholder: v.Get("placeholder").String(),
			Name:        v.Get("name").String(),
			ID:          v.Get("id").String(),
		})
	}
	return elements, nil
}

// extractNavigation reads the vertical main menu
func (b *Browser) extractNavigation() ([]NavItem, error) {
	result, err := b.page.Eval(`() => {
		const items = [];
		document.querySelectorAll('.nav-pf-vertical a, .nav-pf-secondary-nav a').forEach(el => {
			const text = (el.textContent || '').trim();
			if (!text) return;
			items.push({
				selector: el.id ? '#' + el.id : 'a[href="' + el.getAttribute('href') + '"]',
				text: text.slice(0, 30),
				href: el.getAttribute('href') || ''
			});
		});
		return items;
	}`)
	if err != nil {
		return nil, fmt.Errorf("extract navigation: %w", err)
	}

	var items []NavItem
	for _, v := range result.Value.Arr() {
		items = append(items, NavItem{
			Selector: v.Get("selector").String(),
			Text:     v.Get("text").String(),
			Href:     v.Get("href").String(),
		})
	}
	return items, nil
}
