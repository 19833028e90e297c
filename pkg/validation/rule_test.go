package validation

import "testing"

func TestRules(t *testing.T) {
	cases := []struct {
		name  string
		rule  Rule
		value string
		want  bool
	}{
		{"required empty", Required(), "", false},
		{"required blank", Required(), "   ", false},
		{"required set", Required(), "x", true},
		{"letters plain", Letters(), "Maria Lopez", true},
		{"letters accented", Letters(), "José Muñoz Güemes", true},
		{"letters digit", Letters(), "Maria 2", false},
		{"letters tab", Letters(), "Maria\tLopez", false},
		{"letters newline", Letters(), "Maria\nLopez", false},
		{"letters empty skipped", Letters(), "", true},
		{"dni eight", Digits(8), "12345678", true},
		{"dni seven", Digits(8), "1234567", false},
		{"dni nine", Digits(8), "123456789", false},
		{"dni alpha", Digits(8), "1234567a", false},
		{"age one", IntRange(1, 99), "1", true},
		{"age zero", IntRange(1, 99), "0", false},
		{"age hundred", IntRange(1, 99), "100", false},
		{"age text", IntRange(1, 99), "diez", false},
		{"leading zero", NoLeadingZero(), "05", false},
		{"lone zero", NoLeadingZero(), "0", true},
		{"no leading zero", NoLeadingZero(), "50", true},
		{"min length short", MinLength(2), "a", false},
		{"min length runes", MinLength(2), "ñá", true},
		{"max length", MaxLength(3), "abcd", false},
		{"positive", Positive(), "0.01", true},
		{"positive zero", Positive(), "0", false},
		{"positive negative", Positive(), "-3", false},
		{"price 10.5", Decimal(4, 2), "10.5", true},
		{"price 1.50", Decimal(4, 2), "1.50", true},
		{"price 9999.99", Decimal(4, 2), "9999.99", true},
		{"price 010.50", Decimal(4, 2), "010.50", false},
		{"price three decimals", Decimal(4, 2), "1.505", false},
		{"price five integers", Decimal(4, 2), "10000", false},
		{"price trailing dot", Decimal(4, 2), "10.", false},
		{"date", Date(), "2024-05-01", true},
		{"date with time", Date(), "2024-05-01T10:00:00Z", true},
		{"date invalid", Date(), "2024-13-01", false},
		{"date slashed", Date(), "01/05/2024", false},
		{"time", Time(), "09:30", true},
		{"time seconds", Time(), "23:59:59", true},
		{"time invalid", Time(), "24:00", false},
		{"email", Email(), "ana@example.com", true},
		{"email named", Email(), "Ana <ana@example.com>", false},
		{"email invalid", Email(), "ana@", false},
		{"pattern", Pattern(`^[1-9][0-9]?$`, "edad"), "34", true},
		{"pattern miss", Pattern(`^[1-9][0-9]?$`, "edad"), "034", false},
		{"predicate", Predicate("even", "par", func(v string) bool { return len(v)%2 == 0 }), "ab", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.Check(tc.value); got != tc.want {
				t.Fatalf("Check(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestRuleWithMessage(t *testing.T) {
	rule := Positive().WithMessage("La cantidad debe ser positiva").WithKey("product.amount.positive")
	if rule.Message != "La cantidad debe ser positiva" {
		t.Fatalf("unexpected message %q", rule.Message)
	}
	if rule.Key != "product.amount.positive" {
		t.Fatalf("unexpected key %q", rule.Key)
	}
	if base := Positive(); base.Message == rule.Message {
		t.Fatalf("WithMessage mutated the original rule")
	}
}
