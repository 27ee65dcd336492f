package tokenizer

import "strings"

// ExtractBearer returns the token of an Authorization header of the exact
// form "Bearer <token>".
func ExtractBearer(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
