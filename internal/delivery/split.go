// internal/delivery/split.go
package delivery

// Split cuts text into rune-safe chunks of at most limit runes each.
// Multi-byte characters are never cut in half, and concatenating the chunks
// reproduces the input exactly. A non-positive limit returns the whole text
// as a single chunk.
func Split(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
