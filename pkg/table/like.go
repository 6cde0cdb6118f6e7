package table

// Like reports whether s matches the LIKE pattern the way the SQL engine evaluates it:
// '%' matches any run of characters, '_' matches exactly one character, ASCII letters compare
// case-insensitively and there is no escape character, so backslashes are literal.
func Like(pattern, s string) bool {
	p, str := []rune(pattern), []rune(s)
	pi, si := 0, 0
	starP, starS := -1, 0
	for si < len(str) {
		switch {
		case pi < len(p) && p[pi] == '%':
			starP, starS = pi, si
			pi++
		case pi < len(p) && (p[pi] == '_' || foldASCII(p[pi]) == foldASCII(str[si])):
			pi++
			si++
		case starP >= 0:
			// backtrack, let the last '%' swallow one more character
			starS++
			si = starS
			pi = starP + 1
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}

// LikePrefix returns the literal part of the pattern before the first wildcard
// and reports whether the whole pattern is a literal
func LikePrefix(pattern string) (prefix string, literal bool) {
	for i, r := range pattern {
		if r == '%' || r == '_' {
			return pattern[:i], false
		}
	}
	return pattern, true
}

func foldASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
