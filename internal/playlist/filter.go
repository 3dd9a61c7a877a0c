package playlist

import (
	"bufio"
	"fmt"
	"io"

	"github.com/desertthunder/iptvx/internal/shared"
)

// Filter writes [Header] and then every entry of r whose group-title is in allowed, in input order.
//
// It returns the number of lines written, header included.
func Filter(r io.Reader, allowed Categories, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	written := 0

	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return written, fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
	}
	written++

	scanner := NewPairScanner(r, func(meta string) bool {
		category, ok := GroupTitle(meta)
		return ok && allowed.Has(category)
	})

	for scanner.Scan() {
		p := scanner.Pair()
		if _, err := bw.WriteString(p.Meta); err != nil {
			return written, fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
		}
		written++
		if _, err := bw.WriteString(p.Data); err != nil {
			return written, fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, err
	}

	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
	}
	return written, nil
}
