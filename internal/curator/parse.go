package curator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/model"
	"golang.org/x/net/html"
)

var recommendationClasses = map[string]model.CuratorRecommendation{
	"color_recommended":     model.RecommendationRecommended,
	"color_not_recommended": model.RecommendationNotRecommended,
	"color_informational":   model.RecommendationInformational,
}

// parseRecommendations extracts app ids and recommendation kinds from a rendered
// results page. Each recommendation block carries the app id on an element with a
// data-ds-appid attribute and the verdict as a color_* class.
func parseRecommendations(fragment string) (map[int]model.CuratorRecommendation, error) {
	recs := make(map[int]model.CuratorRecommendation)
	if strings.TrimSpace(fragment) == "" {
		return recs, nil
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnexpectedReply, err)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "recommendation") {
			if id, rec, ok := readBlock(n); ok {
				recs[id] = rec
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return recs, nil
}

// readBlock finds the first app id and verdict inside one recommendation block.
func readBlock(block *html.Node) (int, model.CuratorRecommendation, bool) {
	var (
		id  int
		rec model.CuratorRecommendation
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id == 0 {
				if raw, ok := attr(n, "data-ds-appid"); ok {
					// Bundles list several ids; the first is the main app.
					first, _, _ := strings.Cut(raw, ",")
					if v, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
						id = v
					}
				}
			}
			if rec == "" {
				for class, kind := range recommendationClasses {
					if hasClass(n, class) {
						rec = kind
						break
					}
				}
			}
		}
		for child := n.FirstChild; child != nil && (id == 0 || rec == ""); child = child.NextSibling {
			walk(child)
		}
	}
	walk(block)

	return id, rec, id > 0 && rec != ""
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
