package validation

import (
	"reflect"
	"testing"
)

func TestRequiredShortCircuitsOtherRules(t *testing.T) {
	got := StationSchema.Validate(map[string]any{
		"name":           "  ",
		"location":       "Colombo Fort",
		"type":           "AC",
		"availableSlots": 2,
	})
	want := []string{"name is required"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestZeroIsPresentAndBoundsAreInclusive(t *testing.T) {
	base := map[string]any{"name": "Hub", "location": "Kandy", "type": "DC"}

	for _, slots := range []any{0, 50, "25", 0.0} {
		rec := copyRecord(base)
		rec["availableSlots"] = slots
		if errs := StationSchema.Validate(rec); len(errs) != 0 {
			t.Fatalf("slots %v: expected valid, got %v", slots, errs)
		}
	}

	cases := map[any]string{
		-1:    "availableSlots must be at least 0",
		51:    "availableSlots must be no more than 50",
		"abc": "availableSlots must be a number",
	}
	for slots, msg := range cases {
		rec := copyRecord(base)
		rec["availableSlots"] = slots
		got := StationSchema.Validate(rec)
		if len(got) != 1 || got[0] != msg {
			t.Fatalf("slots %v: expected [%s], got %v", slots, msg, got)
		}
	}
}

func TestMessagesFollowDeclarationOrder(t *testing.T) {
	got := UserSchema.Validate(map[string]any{
		"username": "ab",
		"email":    "not-an-email",
		"phone":    "123",
		"nic":      "1234567890123",
		"role":     "Admin",
	})
	want := []string{
		"username must be at least 3 characters",
		"email must be a valid email address",
		"phone must be at least 10 characters",
		"nic must be no more than 12 characters",
		"role must be one of: Customer, Backoffice",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLengthCountsCharacters(t *testing.T) {
	s := Schema{{Name: "name", Rule: Rule{MaxLength: 3}}}
	if errs := s.Validate(map[string]any{"name": "ÅÄÖ"}); len(errs) != 0 {
		t.Fatalf("expected multibyte name to fit, got %v", errs)
	}
}

func TestOptionalAbsentFieldIsSkipped(t *testing.T) {
	s := Schema{{Name: "note", Rule: Rule{MinLength: 5}}}
	for _, v := range []any{nil, "", false} {
		if errs := s.Validate(map[string]any{"note": v}); len(errs) != 0 {
			t.Fatalf("value %v: expected no errors, got %v", v, errs)
		}
	}
	required := Schema{{Name: "agreed", Rule: Rule{Required: true}}}
	if errs := required.Validate(map[string]any{"agreed": false}); len(errs) != 1 {
		t.Fatalf("expected false to count as absent, got %v", errs)
	}
}

func TestPartialOnlyChecksPresentFields(t *testing.T) {
	patch := map[string]any{"availableSlots": -1}
	got := StationSchema.Partial(patch).Validate(patch)
	want := []string{"availableSlots must be at least 0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if errs := StationSchema.Partial(map[string]any{}).Validate(nil); len(errs) != 0 {
		t.Fatalf("expected empty partial schema to accept, got %v", errs)
	}
}

func TestRegisterSchemaDoesNotAliasUserSchema(t *testing.T) {
	if len(UserSchema) != 5 {
		t.Fatalf("expected user schema to keep 5 fields, got %d", len(UserSchema))
	}
	if _, ok := RegisterSchema.Field("password"); !ok {
		t.Fatalf("expected register schema to require a password")
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	cases := map[string]string{
		"  <b>Main</b> Street ":        "Main Street",
		"<script>alert(1)</script>Hub": "alert(1)Hub",
		"a < b > c":                    "a  c",
		"5 > 3":                        "5  3",
		"<<img src=x>>":                "",
		"plain":                        "plain",
	}
	for in, want := range cases {
		got := SanitizeString(in)
		if got != want {
			t.Fatalf("sanitize %q: expected %q, got %q", in, want, got)
		}
		if again := SanitizeString(got); again != got {
			t.Fatalf("sanitize %q not idempotent: %q then %q", in, got, again)
		}
	}

	rec := Sanitize(map[string]any{"name": " <i>Hub</i> ", "slots": 3})
	if rec["name"] != "Hub" || rec["slots"] != 3 {
		t.Fatalf("unexpected sanitized record %v", rec)
	}
	if !reflect.DeepEqual(Sanitize(rec), rec) {
		t.Fatalf("expected sanitizing a sanitized record to be the identity")
	}
}

func copyRecord(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
