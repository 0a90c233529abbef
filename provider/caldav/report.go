package caldav

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// parseMultistatus pulls the calendar-data payloads out of a multistatus
// response. Servers disagree on namespace prefixes (D:, d:, no prefix at
// all), so elements are matched by local name only. Responses whose
// propstat status is not 2xx are skipped.
func parseMultistatus(body []byte) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty multistatus response")
	}

	var payloads []string
	for _, resp := range getElementsIgnoreNS(root, "response") {
		for _, propstat := range getElementsIgnoreNS(resp, "propstat") {
			if status := findElementIgnoreNS(propstat, "status"); status != nil {
				if !strings.Contains(status.Text(), "200") {
					continue
				}
			}
			propElem := findElementIgnoreNS(propstat, "prop")
			if propElem == nil {
				continue
			}
			data := findElementIgnoreNS(propElem, "calendar-data")
			if data == nil {
				continue
			}
			if text := data.Text(); strings.TrimSpace(text) != "" {
				payloads = append(payloads, text)
			}
		}
	}
	return payloads, nil
}

// findElementIgnoreNS finds the first child element matching the local
// name. etree keeps the namespace prefix in Space, so comparing Tag
// alone ignores whatever prefix the server chose.
func findElementIgnoreNS(parent *etree.Element, localName string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if strings.EqualFold(child.Tag, localName) {
			return child
		}
	}
	return nil
}

// getElementsIgnoreNS collects all child elements matching the local
// name, regardless of namespace prefix.
func getElementsIgnoreNS(parent *etree.Element, localName string) []*etree.Element {
	var matches []*etree.Element
	for _, child := range parent.ChildElements() {
		if strings.EqualFold(child.Tag, localName) {
			matches = append(matches, child)
		}
	}
	return matches
}
