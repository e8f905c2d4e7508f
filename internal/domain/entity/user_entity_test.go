package entity

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"User@Example.COM", "user@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"already@lower.org", "already@lower.org"},
	}
	for _, tc := range tests {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a@karunya.edu", "karunya.edu"},
		{"a@B.COM", "b.com"},
		{"weird@local@karunya.edu", "karunya.edu"},
		{"no-at-sign", ""},
		{"trailing@", ""},
	}
	for _, tc := range tests {
		if got := EmailDomain(tc.in); got != tc.want {
			t.Errorf("EmailDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRoleForDomain(t *testing.T) {
	teacherDomains := map[string]bool{"karunya.edu": true, "staff.example.org": true}

	tests := []struct {
		domain string
		want   Role
	}{
		{"karunya.edu", RoleTeacher},
		{"KARUNYA.EDU", RoleTeacher},
		{"staff.example.org", RoleTeacher},
		{"gmail.com", RoleStudent},
		{"students.karunya.edu", RoleStudent},
		{"", RoleStudent},
	}
	for _, tc := range tests {
		if got := RoleForDomain(tc.domain, teacherDomains); got != tc.want {
			t.Errorf("RoleForDomain(%q) = %v, want %v", tc.domain, got, tc.want)
		}
	}
}
