package config

import (
	"reflect"
	"testing"
)

func TestTeacherDomainSet(t *testing.T) {
	c := &Config{TeacherDomains: "Karunya.edu, staff.example.org ,,"}
	got := c.TeacherDomainSet()
	want := map[string]bool{"karunya.edu": true, "staff.example.org": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TeacherDomainSet() = %v, want %v", got, want)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"", []string{}},
		{",,", []string{}},
	}
	for _, tc := range tests {
		if got := splitCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "app", DBPassword: "pw", DBHost: "db", DBPort: "5432", DBName: "quizhub", DBSSLMode: "disable"}
	want := "postgres://app:pw@db:5432/quizhub?sslmode=disable"
	if got := c.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}
