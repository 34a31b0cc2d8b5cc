package mailer

import (
	"strings"
	"testing"
	"unicode"

	"trendline/internal/domain"

	"github.com/google/uuid"
)

func TestOrderLinesHTML(t *testing.T) {
	order := &domain.Order{
		ID: uuid.New(),
		Items: []*domain.OrderItem{
			{
				ProductName: "Court <Classic>",
				ColorName:   "White",
				Size:        "42",
				Quantity:    2,
				UnitPrice:   49.90,
			},
		},
	}

	body := orderLinesHTML(order)

	if !strings.Contains(body, "Court &lt;Classic&gt;") {
		t.Fatalf("expected product name to be HTML-escaped, got %q", body)
	}
	if !strings.Contains(body, "&times; 2: 99.80") {
		t.Fatalf("expected quantity and line total in body, got %q", body)
	}
	for _, r := range body {
		if r > unicode.MaxASCII {
			t.Fatalf("expected plain ASCII body, found %q in %q", r, body)
		}
	}
}
