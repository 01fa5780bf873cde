package invitation

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxEmailLength = 60

// ValidEmail accepts a bare address of 1 to 60 characters whose domain is a
// hostname of at least two labels.
func ValidEmail(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 1 || n > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	domain := s[strings.LastIndexByte(s, '@')+1:]
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if !validLabel(l) {
			return false
		}
	}
	return true
}

// validLabel reports whether l is a DNS label: letters, digits and inner
// hyphens.
func validLabel(l string) bool {
	if l == "" || l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for _, c := range l {
		if c != '-' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func (r CreateRequest) valid() bool {
	return r.ActingPersonID > 0 && r.HouseholdID > 0 && ValidEmail(r.InviteeEmail)
}

func (r ResponseRequest) valid() bool {
	return r.ActingPersonID > 0 && r.HouseholdID > 0
}

func (r CancelRequest) valid() bool {
	return r.ActingPersonID > 0 && r.HouseholdID > 0 && r.ToPersonID > 0
}
