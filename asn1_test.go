package asn1

import "testing"

func TestClass_IsValid(t *testing.T) {
	for c := Class(0); c <= 3; c++ {
		if !c.IsValid() {
			t.Errorf("Class(%d).IsValid() = false", c)
		}
	}
	if Class(4).IsValid() {
		t.Error("Class(4).IsValid() = true")
	}
}

func TestClass_String(t *testing.T) {
	tt := map[Class]string{
		ClassUniversal:       "Universal",
		ClassApplication:     "Application",
		ClassContextSpecific: "ContextSpecific",
		ClassPrivate:         "Private",
		Class(5):             "Class(5)",
	}
	for c, want := range tt {
		if got := c.String(); got != want {
			t.Errorf("Class(%d).String() = %q, want %q", c, got, want)
		}
	}
}

func TestTag_String(t *testing.T) {
	tt := []struct {
		tag  Tag
		want string
	}{
		{Tag{ClassContextSpecific, 3}, "[3]"},
		{Tag{ClassUniversal, TagSequence}, "[UNIVERSAL 16]"},
		{Tag{ClassApplication, 1}, "[APPLICATION 1]"},
		{Tag{ClassPrivate, 7}, "[PRIVATE 7]"},
	}
	for _, tc := range tt {
		if got := tc.tag.String(); got != tc.want {
			t.Errorf("Tag%v.String() = %q, want %q", tc.tag, got, tc.want)
		}
	}
}
