package app

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const defaultHostName = "Tu anfitrión"

type guidebookData struct {
	GuestName    string
	PropertyName string
	GuideURL     string
	HostName     string
}

type copyView struct{ Greeting, Body, CTA, Closing string }

type guidebookView struct {
	GuestName, PropertyName, GuideURL, HostName string
	Copy                                        copyView
}

type guidebookCopy struct {
	subject  string
	greeting string
	body     string
	cta      string
	closing  string
}

var guidebookCopies = map[string]guidebookCopy{
	"es": {
		subject:  "Tu guía de %s ya está lista",
		greeting: "Hola",
		body:     "Para que tu estancia sea perfecta, hemos preparado una guía digital con todo lo que necesitas saber sobre",
		cta:      "Ver la guía",
		closing:  "Un saludo",
	},
	"en": {
		subject:  "Your guide to %s is ready",
		greeting: "Hi",
		body:     "To make your stay perfect we have prepared a digital guide with everything you need to know about",
		cta:      "Open the guide",
		closing:  "Best regards",
	},
	"fr": {
		subject:  "Votre guide pour %s est prêt",
		greeting: "Bonjour",
		body:     "Pour que votre séjour soit parfait, nous avons préparé un guide numérique avec tout ce qu'il faut savoir sur",
		cta:      "Voir le guide",
		closing:  "Cordialement",
	},
}

var guidebookHTML = template.Must(template.New("guidebook").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<p>{{.Copy.Greeting}} {{.GuestName}},</p>
<p>{{.Copy.Body}} <strong>{{.PropertyName}}</strong>.</p>
<p><a href="{{.GuideURL}}">{{.Copy.CTA}}</a></p>
<p>{{.Copy.Closing}},<br>{{.HostName}}</p>
</body></html>`))

// guidebookLanguage narrows lang to one we have copy for.
func guidebookLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := guidebookCopies[lang]; ok {
		return lang
	}
	return "es"
}

func guideURL(base, propertyID string, slug *string) string {
	base = strings.TrimRight(base, "/")
	if slug != nil && *slug != "" {
		return base + "/guide/" + *slug
	}
	return base + "/guide/" + propertyID
}

// renderGuidebook returns subject, html and plain-text bodies.
func renderGuidebook(lang string, d guidebookData) (string, string, string, error) {
	c := guidebookCopies[guidebookLanguage(lang)]
	if d.HostName == "" {
		d.HostName = defaultHostName
	}
	view := guidebookView{
		GuestName: d.GuestName, PropertyName: d.PropertyName, GuideURL: d.GuideURL, HostName: d.HostName,
		Copy: copyView{Greeting: c.greeting, Body: c.body, CTA: c.cta, Closing: c.closing},
	}
	var buf bytes.Buffer
	if err := guidebookHTML.Execute(&buf, view); err != nil {
		return "", "", "", fmt.Errorf("render guidebook email: %w", err)
	}
	text := fmt.Sprintf("%s %s,\n\n%s %s.\n\n%s: %s\n\n%s,\n%s\n",
		c.greeting, d.GuestName, c.body, d.PropertyName, c.cta, d.GuideURL, c.closing, d.HostName)
	return fmt.Sprintf(c.subject, d.PropertyName), buf.String(), text, nil
}
