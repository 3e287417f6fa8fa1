package report

import (
	"bytes"
	"testing"
)

func TestRenderProducesPDF(t *testing.T) {
	r := Renderer{Brand: "EXPRESSGLASS", FooterText: "rodapé"}
	doc, err := r.Render(sampleReport(5))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Pages < 1 {
		t.Fatalf("pages = %d, want at least 1", doc.Pages)
	}
	if len(doc.PDF) == 0 {
		t.Fatalf("empty PDF output")
	}
	if !bytes.HasPrefix(doc.PDF, []byte("%PDF")) {
		t.Fatalf("output missing PDF header")
	}
}

func TestRenderEmptyReport(t *testing.T) {
	rep := sampleReport(0)
	rep.Sections = nil

	r := Renderer{Brand: "EXPRESSGLASS"}
	doc, err := r.Render(rep)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Pages != 1 {
		t.Fatalf("pages = %d, want 1", doc.Pages)
	}
	if len(doc.PDF) == 0 {
		t.Fatalf("empty PDF output")
	}
}

func TestRenderMultiPage(t *testing.T) {
	r := Renderer{Brand: "EXPRESSGLASS", FooterText: "rodapé"}
	doc, err := r.Render(sampleReport(150))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Pages < 2 {
		t.Fatalf("pages = %d, want at least 2", doc.Pages)
	}
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#c53030")
	if r != 197 || g != 48 || b != 48 {
		t.Fatalf("got %d,%d,%d", r, g, b)
	}
	r, g, b = hexToRGB("nonsense")
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("bad input must map to black, got %d,%d,%d", r, g, b)
	}
}
