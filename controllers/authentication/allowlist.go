package authentication

import "strings"

// AllowList holds the email addresses permitted to use the app.
type AllowList []string

func NewAllowList(emails []string) AllowList {
	var out AllowList
	for _, e := range emails {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Contains is an exact match; the empty string is never allowed.
func (a AllowList) Contains(email string) bool {
	if email == "" {
		return false
	}
	for _, allowed := range a {
		if allowed == email {
			return true
		}
	}
	return false
}
