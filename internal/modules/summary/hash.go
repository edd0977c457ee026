package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// contentHash fingerprints a page so identical submissions share one
// generated summary. The key is stable across process runs.
func contentHash(pageURL, pageTitle, contextText string) string {
	content := fmt.Sprintf("%s:%s:%s", pageURL, pageTitle, contextText)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
