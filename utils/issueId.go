package utils

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// IssueIDPrefix is the fixed prefix of every generated issue id.
const IssueIDPrefix = "SEVA"

// GenerateIssueID builds an id from the prefix, the last six digits of
// the current unix-millisecond clock, and two random digits. Uniqueness
// is probabilistic, not guaranteed; callers that need a hard guarantee
// must check the store and retry.
func GenerateIssueID() string {
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s%s%02d", IssueIDPrefix, ms, rand.Intn(100))
}
