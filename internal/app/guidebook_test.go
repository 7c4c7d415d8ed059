package app

import (
	"strings"
	"testing"
)

func TestRenderGuidebook(t *testing.T) {
	subject, html, text, err := renderGuidebook("EN", guidebookData{
		GuestName: "Ana <script>", PropertyName: "Casa Playa Azul", GuideURL: "https://guides.test/guide/casa",
	})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Your guide to Casa Playa Azul is ready" {
		t.Fatalf("subject = %q", subject)
	}
	if strings.Contains(html, "<script>") || !strings.Contains(html, "Ana &lt;script&gt;") {
		t.Fatalf("guest name not escaped: %s", html)
	}
	if !strings.Contains(html, `href="https://guides.test/guide/casa"`) || !strings.Contains(text, defaultHostName) {
		t.Fatalf("missing link or default host:\n%s\n%s", html, text)
	}
}

func TestGuidebookLanguageFallback(t *testing.T) {
	for in, want := range map[string]string{"": "es", "fr": "fr", " En ": "en", "de": "es"} {
		if got := guidebookLanguage(in); got != want {
			t.Fatalf("guidebookLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGuideURL(t *testing.T) {
	slug := "casa-azul"
	if got := guideURL("https://x.test/", "p1", &slug); got != "https://x.test/guide/casa-azul" {
		t.Fatalf("got %s", got)
	}
	if got := guideURL("https://x.test", "p1", nil); got != "https://x.test/guide/p1" {
		t.Fatalf("got %s", got)
	}
}
