package playlist

import "io"

// Extract collects the distinct group-title values of r whose text contains any keyword, ignoring case.
//
// Every metadata line is considered, whether or not a data line follows it.
// Values keep their original case. Metadata lines without a usable group-title are skipped.
func Extract(r io.Reader, keywords []string) (Categories, error) {
	kw := NewKeywords(keywords...)
	found := make(Categories)

	lines := newLineReader(r)
	for {
		line, ok := lines.next()
		if !ok {
			break
		}
		if !IsMetadata(line) {
			continue
		}
		if category, ok := GroupTitle(line); ok && kw.Match(category) {
			found.Add(category)
		}
	}

	if lines.err != nil {
		return nil, lines.err
	}
	return found, nil
}
