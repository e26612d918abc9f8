package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// BucketSize is the width of an identifier bucket.
const BucketSize = 1000

// maxBucket is the last bucket; larger suffixes all land in it.
const maxBucket = 5000

// Bucket returns the manifest directory for an identifier: the numeric
// suffix after the last underscore, rounded down to a multiple of
// BucketSize and printed with four digits. Suffixes of 5000 and above
// share the "5000" bucket.
func Bucket(id string) (string, error) {
	suffix := id
	if i := strings.LastIndex(id, "_"); i >= 0 {
		suffix = id[i+1:]
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: %q", ErrBadIdentifier, id)
	}
	b := min(n/BucketSize*BucketSize, maxBucket)
	return fmt.Sprintf("%04d", b), nil
}
