package domain

// StrPtr maps "" to nil so optional text columns store NULL.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrFromPtr is the inverse of StrPtr.
func StrFromPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
