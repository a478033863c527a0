package model

import "testing"

func TestMetadata_String(t *testing.T) {
	m := Metadata{
		MetaCreator:  []any{"Jane Doe", "John Roe"},
		MetaTitle:    "Example",
		MetaFileSize: float64(3000000),
		"empty":      nil,
	}

	tests := []struct {
		key      string
		expected string
	}{
		{MetaCreator, "Jane Doe, John Roe"},
		{MetaTitle, "Example"},
		{MetaFileSize, "3000000"},
		{"empty", ""},
		{"missing", ""},
	}

	for _, test := range tests {
		if got := m.String(test.key); got != test.expected {
			t.Errorf("String(%q) = %q, expected %q", test.key, got, test.expected)
		}
	}
}

func TestMetadata_Strings(t *testing.T) {
	m := Metadata{
		MetaSubject:    "history",
		MetaCollection: []any{"opensource_movies", "", "community"},
	}

	if got := m.Strings(MetaSubject); len(got) != 1 || got[0] != "history" {
		t.Errorf("Expected single subject, got %v", got)
	}

	if got := m.Strings(MetaCollection); len(got) != 2 {
		t.Errorf("Expected blank collection entries to be dropped, got %v", got)
	}

	if m.Strings("missing") != nil {
		t.Error("Expected nil for missing key")
	}
}

func TestMetadata_Has(t *testing.T) {
	m := Metadata{MetaFileMD5: "abc", MetaDate: ""}
	if !m.Has(MetaFileMD5) {
		t.Error("Expected file_md5 to be present")
	}
	if m.Has(MetaDate) {
		t.Error("Expected empty date to be absent")
	}
}
