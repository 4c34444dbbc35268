package menorpreco

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
)

const samplePayload = `{
	"produtos": [
		{
			"estabelecimento": {
				"nm_emp": "Supermercado Bom Preço LTDA",
				"nm_fan": "Bom Preço",
				"nm_logr": "Rua das Flores",
				"nr_logr": "123",
				"bairro": "Centro"
			},
			"valor_tabela": "5.00",
			"valor_desconto": "0.50",
			"datahora": "2026-08-20T10:30:00Z",
			"tempo": "há 2 horas"
		}
	]
}`

func TestSearch_DecodesOffers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	offers, err := c.Search(context.Background(), Query{Term: "7891234567890", Category: 52})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("len=%d want 1", len(offers))
	}
	offer := offers[0]
	if offer.Establishment.LegalName != "Supermercado Bom Preço LTDA" {
		t.Fatalf("nm_emp=%q", offer.Establishment.LegalName)
	}
	if offer.Establishment.District != "Centro" {
		t.Fatalf("bairro=%q", offer.Establishment.District)
	}
	if !offer.ListPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("valor_tabela=%s", offer.ListPrice)
	}
	if !offer.Discount.Equal(decimal.RequireFromString("0.50")) {
		t.Fatalf("valor_desconto=%s", offer.Discount)
	}
	if offer.ObservedAt.IsZero() {
		t.Fatalf("datahora not parsed")
	}
	if offer.Recency != "há 2 horas" {
		t.Fatalf("tempo=%q", offer.Recency)
	}
}

func TestSearch_SendsQueryParams(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"produtos":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.Search(context.Background(), Query{
		Local:    "4wzv",
		Term:     "7891234567890",
		GTIN:     "7891234567890",
		Category: 53,
		Radius:   20,
		Period:   3,
		Order:    "preco.asc",
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := map[string]string{
		"local":     "4wzv",
		"termo":     "7891234567890",
		"gtin":      "7891234567890",
		"categoria": "53",
		"raio":      "20",
		"data":      "3",
		"ordem":     "preco.asc",
		"offset":    "0",
	}
	for key, value := range want {
		if got.Get(key) != value {
			t.Fatalf("%s=%q want %q", key, got.Get(key), value)
		}
	}
}

func TestSearch_NonOKStatusYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	offers, err := c.Search(context.Background(), Query{Term: "7891234567890", Category: 52})
	if err != nil {
		t.Fatalf("err=%v, non-2xx must not be an error", err)
	}
	if len(offers) != 0 {
		t.Fatalf("len=%d want 0", len(offers))
	}
}

func TestSearch_EmptyPayloadYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	offers, err := c.Search(context.Background(), Query{Term: "7891234567890", Category: 52})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(offers) != 0 {
		t.Fatalf("len=%d want 0", len(offers))
	}
}

func TestSearch_TransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(http.DefaultClient, srv.URL)
	if _, err := c.Search(context.Background(), Query{Term: "7891234567890", Category: 52}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestObservedTime_Encodings(t *testing.T) {
	tests := []struct {
		in     string
		isZero bool
	}{
		{`"2026-08-20T10:30:00Z"`, false},
		{`"2026-08-20 10:30:00"`, false},
		{`1755685800000`, false},
		{`1755685800`, false},
		{`""`, true},
		{`null`, true},
		{`"sem data"`, true},
	}
	for _, tt := range tests {
		var ot ObservedTime
		if err := ot.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) err=%v", tt.in, err)
		}
		if ot.IsZero() != tt.isZero {
			t.Fatalf("UnmarshalJSON(%s) isZero=%v want %v", tt.in, ot.IsZero(), tt.isZero)
		}
	}
}
