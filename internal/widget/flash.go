package widget

import (
	"fmt"
	"strings"
)

// FlashMessageSelector matches the flash messages above the main content.
const FlashMessageSelector = "#flash_msg_div div.alert"

// FlashMessage is one notification shown in the flash area.
type FlashMessage struct {
	Text string
	Type string // success, info, warning, error
}

// Flash reads and asserts the flash area.
type Flash struct{}

// Messages returns every message currently displayed.
func (Flash) Messages(d Driver) []FlashMessage {
	els, err := d.FindAll(FlashMessageSelector)
	if err != nil {
		return nil
	}
	var msgs []FlashMessage
	for _, el := range els {
		if !el.Visible() {
			continue
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		class, _ := el.Attribute("class")
		msgs = append(msgs, FlashMessage{Text: strings.TrimSpace(text), Type: flashType(class)})
	}
	return msgs
}

func flashType(class string) string {
	switch {
	case strings.Contains(class, "alert-success"):
		return "success"
	case strings.Contains(class, "alert-danger"), strings.Contains(class, "alert-error"):
		return "error"
	case strings.Contains(class, "alert-warning"):
		return "warning"
	default:
		return "info"
	}
}

// AssertSuccessMessage fails unless a success message reads exactly text.
func (f Flash) AssertSuccessMessage(d Driver, text string) error {
	msgs := f.Messages(d)
	for _, msg := range msgs {
		if msg.Type == "success" && msg.Text == text {
			return nil
		}
	}
	return fmt.Errorf("flash: success message %q not found in %s", text, describe(msgs))
}

// AssertNoError fails if any error message is displayed.
func (f Flash) AssertNoError(d Driver) error {
	var errs []string
	for _, msg := range f.Messages(d) {
		if msg.Type == "error" {
			errs = append(errs, msg.Text)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("flash: error messages displayed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func describe(msgs []FlashMessage) string {
	if len(msgs) == 0 {
		return "[]"
	}
	parts := make([]string, len(msgs))
	for i, msg := range msgs {
		parts[i] = fmt.Sprintf("%s: %q", msg.Type, msg.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
