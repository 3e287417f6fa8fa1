package vocab

import "testing"

func TestNormalizeCanonical(t *testing.T) {
	v := Default()

	cases := []struct {
		in   string
		want string
	}{
		{"Autorizado", StatusAuthorized},
		{"AUTORIZADO PELO CLIENTE", StatusAuthorized},
		{"Recusado", StatusRefused},
		{"Anulado", StatusCancelled},
		{"Cancelado", StatusCancelled},
		{"Orçamento", StatusQuote},
		{"Consulta/Orçamento", StatusConsultQuote},
		{"Pedido de Autorização", StatusAuthRequest},
		{"Devolve Vidro e Encerra", StatusReturnGlassClose},
		{"Falta Documentos", StatusMissingDocs},
		{"Incidência", StatusIncident},
	}
	for _, c := range cases {
		got, ok := v.Normalize(c.in)
		if !ok {
			t.Fatalf("Normalize(%q): not recognized", c.in)
		}
		if got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeCompositeBeforeSubstring(t *testing.T) {
	v := Default()

	// "orçamento enviado" contains "orçamento"; the longer rule must win.
	got, ok := v.Normalize("Orçamento Enviado ao cliente")
	if !ok || got != StatusQuoteSent {
		t.Fatalf("got %q (ok=%v), want %q", got, ok, StatusQuoteSent)
	}

	got, ok = v.Normalize("Pedido de Autorização pendente")
	if !ok || got != StatusAuthRequest {
		t.Fatalf("got %q (ok=%v), want %q", got, ok, StatusAuthRequest)
	}
}

func TestNormalizePassthrough(t *testing.T) {
	v := Default()

	got, ok := v.Normalize("  Estado Totalmente Novo  ")
	if ok {
		t.Fatalf("unexpected rule match for unknown status")
	}
	if got != "Estado Totalmente Novo" {
		t.Fatalf("passthrough = %q, want trimmed original", got)
	}
}

func TestAlertAndClosedSets(t *testing.T) {
	v := Default()

	for _, s := range []string{StatusMissingDocs, StatusRefused, StatusIncident} {
		if !v.IsAlert(s) {
			t.Fatalf("IsAlert(%q) = false, want true", s)
		}
	}
	if v.IsAlert(StatusAuthorized) {
		t.Fatalf("IsAlert(AUTHORIZED) = true, want false")
	}

	for _, s := range []string{StatusCancelled, StatusReturnGlassClose} {
		if !v.IsClosed(s) {
			t.Fatalf("IsClosed(%q) = false, want true", s)
		}
	}
	if v.IsClosed(StatusRefused) {
		t.Fatalf("IsClosed(REFUSED) = true, want false")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if len(v.Rules) == 0 || len(v.AlertStatuses) == 0 || len(v.ClosedStatuses) == 0 {
		t.Fatalf("defaults not populated: %+v", v)
	}
}
