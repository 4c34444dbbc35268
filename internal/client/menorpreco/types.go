package menorpreco

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Establishment is the retail location attached to an offer, exactly as the
// price-transparency API names it. nm_emp is the registered legal name,
// nm_fan the storefront ("fantasy") name; either may be empty.
type Establishment struct {
	LegalName string `json:"nm_emp"`
	TradeName string `json:"nm_fan"`
	Street    string `json:"nm_logr"`
	Number    string `json:"nr_logr"`
	District  string `json:"bairro"`
}

// Offer is one observed shelf price returned by the search endpoint. It is
// transient: offers live only for the duration of a sync step and are never
// persisted as-is.
type Offer struct {
	Establishment Establishment   `json:"estabelecimento"`
	ListPrice     decimal.Decimal `json:"valor_tabela"`
	Discount      decimal.Decimal `json:"valor_desconto"`
	ObservedAt    ObservedTime    `json:"datahora"`
	Recency       string          `json:"tempo"`
}

type searchResponse struct {
	Produtos []Offer `json:"produtos"`
}

// ObservedTime tolerates the timestamp encodings the API has been seen to
// emit: RFC3339, a bare "2006-01-02 15:04:05", and epoch seconds or millis.
type ObservedTime struct {
	t time.Time
}

func (o ObservedTime) Time() time.Time {
	return o.t
}

func (o ObservedTime) IsZero() bool {
	return o.t.IsZero()
}

func (o ObservedTime) MarshalJSON() ([]byte, error) {
	if o.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(o.t)
}

func (o *ObservedTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if raw == "" || raw == "null" {
		o.t = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			o.t = parsed.UTC()
			return nil
		}
	}
	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if epoch > 1_000_000_000_000 {
			o.t = time.UnixMilli(epoch).UTC()
		} else {
			o.t = time.Unix(epoch, 0).UTC()
		}
		return nil
	}
	// Unknown encoding: keep the offer, drop the timestamp.
	o.t = time.Time{}
	return nil
}
