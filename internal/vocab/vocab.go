package vocab

import (
	"strings"

	"github.com/spf13/viper"
)

// Canonical status labels produced by normalization. Free-text statuses that
// match no rule pass through unchanged.
const (
	StatusAuthorized       = "AUTHORIZED"
	StatusRefused          = "REFUSED"
	StatusCancelled        = "CANCELLED"
	StatusQuote            = "QUOTE"
	StatusQuoteSent        = "QUOTE-SENT"
	StatusConsultQuote     = "CONSULT/QUOTE"
	StatusAuthRequest      = "AUTH-REQUEST"
	StatusReturnGlassClose = "RETURN-GLASS-CLOSE"
	StatusMissingDocs      = "MISSING-DOCS"
	StatusIncident         = "INCIDENT"
)

// Rule maps a case-insensitive status substring to a canonical label.
type Rule struct {
	Pattern string `mapstructure:"pattern" json:"pattern"`
	Label   string `mapstructure:"label" json:"label"`
}

// Vocabulary is the full status configuration: normalization rules evaluated
// in declaration order (first match wins), the alert vocabulary, and the set
// of statuses that close a ticket.
type Vocabulary struct {
	Rules          []Rule   `mapstructure:"rules"`
	AlertStatuses  []string `mapstructure:"alert_statuses"`
	ClosedStatuses []string `mapstructure:"closed_statuses"`
}

// Default returns the compiled-in vocabulary. Rule order matters: the
// composite patterns ("orçamento enviado", "pedido de autorização") must be
// tried before their bare substrings.
func Default() Vocabulary {
	return Vocabulary{
		Rules: []Rule{
			{Pattern: "orçamento enviado", Label: StatusQuoteSent},
			{Pattern: "orcamento enviado", Label: StatusQuoteSent},
			{Pattern: "consulta/orçamento", Label: StatusConsultQuote},
			{Pattern: "consulta/orcamento", Label: StatusConsultQuote},
			{Pattern: "pedido de autorização", Label: StatusAuthRequest},
			{Pattern: "pedido de autorizacao", Label: StatusAuthRequest},
			{Pattern: "autorizado", Label: StatusAuthorized},
			{Pattern: "recusado", Label: StatusRefused},
			{Pattern: "anulado", Label: StatusCancelled},
			{Pattern: "cancelado", Label: StatusCancelled},
			{Pattern: "orçamento", Label: StatusQuote},
			{Pattern: "orcamento", Label: StatusQuote},
			{Pattern: "devolve vidro", Label: StatusReturnGlassClose},
			{Pattern: "falta documentos", Label: StatusMissingDocs},
			{Pattern: "incidência", Label: StatusIncident},
			{Pattern: "incidencia", Label: StatusIncident},
		},
		AlertStatuses:  []string{StatusMissingDocs, StatusRefused, StatusIncident},
		ClosedStatuses: []string{StatusCancelled, StatusReturnGlassClose},
	}
}

// Load reads a YAML vocabulary resource. An empty path yields the defaults,
// so operators only ship a file when they need to extend the rule set.
func Load(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Vocabulary{}, err
	}

	var out Vocabulary
	if err := v.Unmarshal(&out); err != nil {
		return Vocabulary{}, err
	}
	if len(out.Rules) == 0 {
		out.Rules = Default().Rules
	}
	if len(out.AlertStatuses) == 0 {
		out.AlertStatuses = Default().AlertStatuses
	}
	if len(out.ClosedStatuses) == 0 {
		out.ClosedStatuses = Default().ClosedStatuses
	}
	return out, nil
}

// Normalize maps a free-text status to its canonical label, or passes the
// trimmed original through when no rule matches.
func (v Vocabulary) Normalize(status string) (string, bool) {
	trimmed := strings.TrimSpace(status)
	lower := strings.ToLower(trimmed)
	for _, r := range v.Rules {
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Label, true
		}
	}
	return trimmed, false
}

// IsAlert reports whether a normalized status is in the alert vocabulary.
func (v Vocabulary) IsAlert(label string) bool {
	return containsFold(v.AlertStatuses, label)
}

// IsClosed reports whether a normalized status finalizes the ticket.
func (v Vocabulary) IsClosed(label string) bool {
	return containsFold(v.ClosedStatuses, label)
}

func containsFold(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), target) {
			return true
		}
	}
	return false
}
