package report

import (
	"strings"
	"testing"
)

func TestStripHTMLBasic(t *testing.T) {
	in := "<p>Primeiro parágrafo</p><p>Segundo <strong>importante</strong></p>"
	got := StripHTML(in)

	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Fatalf("tags survived: %q", got)
	}
	if !strings.Contains(got, "Primeiro parágrafo") || !strings.Contains(got, "Segundo importante") {
		t.Fatalf("text lost: %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("block boundary lost: %q", got)
	}
}

func TestStripHTMLEntities(t *testing.T) {
	got := StripHTML("<p>Lojas&nbsp;&amp;&nbsp;Fichas &gt; tudo</p>")
	if got != "Lojas & Fichas > tudo" {
		t.Fatalf("got %q", got)
	}
}

func TestStripHTMLEmpty(t *testing.T) {
	if got := StripHTML(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
	if got := StripHTML("   \n "); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestStripHTMLPlainTextPassthrough(t *testing.T) {
	if got := StripHTML("sem marcação nenhuma"); got != "sem marcação nenhuma" {
		t.Fatalf("got %q", got)
	}
}

func TestStripHTMLCollapsesBlankRuns(t *testing.T) {
	got := StripHTML("<div>a</div><br><br><br><div>b</div>")
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("blank runs not collapsed: %q", got)
	}
}
