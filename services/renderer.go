package services

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"listing-optimizer/config"
	"listing-optimizer/models"
)

var placeholderRegexp = regexp.MustCompile(`\{\{\s*([A-Za-z_]+)\s*\}\}`)

const defaultTemplateBody = `<div class="listing">
  <h1>{{TITLE}}</h1>
  <p class="price">{{PRICE}} <s>{{ORIGINAL_PRICE}}</s></p>
  <p class="condition">Condition: {{CONDITION}}</p>
  <div class="description">{{DESCRIPTION}}</div>
  <ul class="selling-points">{{SELLING_POINTS}}</ul>
  <table class="specifications">{{SPECIFICATIONS}}</table>
  <div class="images">{{IMAGES}}</div>
  <p class="seller">Sold by {{SELLER}} from {{LOCATION}}</p>
  <p class="keywords">{{KEYWORDS}}</p>
</div>`

const plainTemplateBody = `{{TITLE}}
Price: {{PRICE}} (was {{ORIGINAL_PRICE}})
Condition: {{CONDITION}}

{{DESCRIPTION}}

{{SELLING_POINTS}}

{{SPECIFICATIONS}}

Keywords: {{KEYWORDS}}`

// TemplateRenderer substitutes optimized content into named templates.
type TemplateRenderer struct {
	templates map[string]config.Template
}

// NewTemplateRenderer registers the built-in templates plus any extra presets.
// Extra presets with a built-in id replace it.
func NewTemplateRenderer(extra map[string]config.Template) *TemplateRenderer {
	tpls := map[string]config.Template{
		"default": {Format: "html", Body: defaultTemplateBody},
		"plain":   {Format: "text", Body: plainTemplateBody},
	}
	for id, t := range extra {
		tpls[id] = t
	}
	return &TemplateRenderer{templates: tpls}
}

// TemplateIDs lists the registered template ids in sorted order.
func (r *TemplateRenderer) TemplateIDs() []string {
	return sortedKeys(r.templates)
}

// Render replaces every {{PLACEHOLDER}} in the template. Unknown placeholders
// render as empty strings.
func (r *TemplateRenderer) Render(content *models.OptimizedContent, attrs *models.ListingAttributes, templateID string) (string, error) {
	tpl, ok := r.templates[templateID]
	if !ok {
		return "", fmt.Errorf("unknown template %q", templateID)
	}
	if content == nil || attrs == nil {
		return "", fmt.Errorf("render %q: missing content", templateID)
	}

	isHTML := tpl.Format != "text"
	values := placeholderValues(content, attrs, isHTML)

	return placeholderRegexp.ReplaceAllStringFunc(tpl.Body, func(token string) string {
		name := strings.ToUpper(placeholderRegexp.FindStringSubmatch(token)[1])
		return values[name]
	}), nil
}

func placeholderValues(c *models.OptimizedContent, a *models.ListingAttributes, isHTML bool) map[string]string {
	esc := func(s string) string {
		if isHTML {
			return html.EscapeString(s)
		}
		return s
	}

	v := map[string]string{
		"TITLE":          esc(c.Title),
		"PRICE":          fmt.Sprintf("$%.2f", c.Price),
		"ORIGINAL_PRICE": fmt.Sprintf("$%.2f", a.Price),
		"CONDITION":      esc(a.Condition),
		"KEYWORDS":       esc(strings.Join(c.Keywords, ", ")),
		"LOCATION":       esc(a.Location),
		"SELLER":         esc(a.SellerID),
	}

	if isHTML {
		v["DESCRIPTION"] = strings.ReplaceAll(esc(c.Description), "\n", "<br>\n")
	} else {
		v["DESCRIPTION"] = c.Description
	}

	var points, specs, images []string
	for _, p := range c.SellingPoints {
		if isHTML {
			points = append(points, "<li>"+esc(p)+"</li>")
		} else {
			points = append(points, "- "+p)
		}
	}

	for _, k := range sortedKeys(a.Specifications) {
		if isHTML {
			specs = append(specs, fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>", esc(k), esc(a.Specifications[k])))
		} else {
			specs = append(specs, fmt.Sprintf("%s: %s", k, a.Specifications[k]))
		}
	}

	for _, img := range a.Images {
		if isHTML {
			images = append(images, fmt.Sprintf(`<img src="%s" alt="%s">`, esc(img), esc(c.Title)))
		} else {
			images = append(images, img)
		}
	}

	v["SELLING_POINTS"] = strings.Join(points, "\n")
	v["SPECIFICATIONS"] = strings.Join(specs, "\n")
	v["IMAGES"] = strings.Join(images, "\n")
	return v
}
